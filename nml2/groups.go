// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nml2

import "fmt"

// resolveGroups expands the cell's segment groups into flat segment lists:
// first pass resolves directly listed members, second pass appends the
// resolved members of each included group, in document order.  Each
// expansion is deduplicated by segment id, preserving first-seen order.
// The reserved group "all" is synthesized as the full segment list when not
// defined explicitly.  Unknown members, unknown includes and include cycles
// are configuration errors.
func (rd *Reader) resolveGroups(cell *Cell, idToSeg map[int]*Segment) (map[string][]*Segment, error) {
	groups := cell.Morph.Groups
	sgs := make(map[string][]*Segment, len(groups)+1)
	for _, sg := range groups {
		membs := make([]*Segment, 0, len(sg.Members))
		for _, mid := range sg.Members {
			seg, ok := idToSeg[mid]
			if !ok {
				return nil, fmt.Errorf("nml2: segment group %s in cell %s lists unknown segment %d", sg.ID, cell.ID, mid)
			}
			membs = append(membs, seg)
		}
		sgs[sg.ID] = membs
	}

	if err := checkIncludeCycles(cell, groups); err != nil {
		return nil, err
	}

	for _, sg := range groups {
		for _, inc := range sg.Includes {
			incSegs, ok := sgs[inc]
			if !ok {
				return nil, fmt.Errorf("nml2: segment group %s in cell %s includes unknown group %s", sg.ID, cell.ID, inc)
			}
			sgs[sg.ID] = append(sgs[sg.ID], incSegs...)
		}
	}

	for id, segs := range sgs {
		sgs[id] = dedupSegments(segs)
	}

	if _, ok := sgs["all"]; !ok {
		all := make([]*Segment, len(cell.Morph.Segments))
		copy(all, cell.Morph.Segments)
		sgs["all"] = all
	}
	return sgs, nil
}

// checkIncludeCycles rejects cyclic group inclusion, which has no defined
// expansion.
func checkIncludeCycles(cell *Cell, groups []*SegmentGroup) error {
	incs := make(map[string][]string, len(groups))
	for _, sg := range groups {
		incs[sg.ID] = sg.Includes
	}
	const (
		inProgress = 1
		done       = 2
	)
	state := make(map[string]int, len(groups))
	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case inProgress:
			return fmt.Errorf("nml2: segment group include cycle through %s in cell %s", id, cell.ID)
		case done:
			return nil
		}
		state[id] = inProgress
		for _, inc := range incs[id] {
			if err := visit(inc); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}
	for _, sg := range groups {
		if err := visit(sg.ID); err != nil {
			return err
		}
	}
	return nil
}

// dedupSegments returns segments deduplicated by id, preserving first-seen
// order.
func dedupSegments(segs []*Segment) []*Segment {
	seen := make(map[int]bool, len(segs))
	uniq := make([]*Segment, 0, len(segs))
	for _, seg := range segs {
		if seen[seg.ID] {
			continue
		}
		seen[seg.ID] = true
		uniq = append(uniq, seg)
	}
	return uniq
}

// targetSegments returns the segments a per-region property applies to:
// the named group's expansion ("all" selects the reserved all group), or
// the entire morphology for an empty selector.  The result is deduplicated
// by segment id, preserving first-seen order.
func (rd *Reader) targetSegments(cell *Cell, group string) ([]*Segment, error) {
	if group == "" {
		return dedupSegments(cell.Morph.Segments), nil
	}
	sgs, ok := rd.CellGroups[cell.ID]
	if !ok {
		return nil, fmt.Errorf("nml2: no groups resolved for cell %s", cell.ID)
	}
	segs, ok := sgs[group]
	if !ok {
		return nil, fmt.Errorf("nml2: unknown segment group %s in cell %s", group, cell.ID)
	}
	return dedupSegments(segs), nil
}
