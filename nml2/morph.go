// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nml2

import (
	"fmt"

	"github.com/emer/nml2/sim"
	"github.com/goki/mat32"
)

// CreateCellPrototype builds the whole-cell prototype for one cell
// definition under the library root: the compartmental morphology, then
// the biophysics on top of it.
func (rd *Reader) CreateCellPrototype(cell *Cell) (*sim.Neuron, error) {
	nrn := sim.NewNeuron(rd.Lib, cell.ID)
	rd.ProtoCells[cell.ID] = nrn
	if err := rd.CreateMorphology(cell, nrn); err != nil {
		return nil, err
	}
	if err := rd.ImportBiophysics(cell); err != nil {
		return nil, err
	}
	return nrn, nil
}

// CreateMorphology builds one compartment per segment of the cell under
// nrn, positions it, and links it to its parent compartment axially.
// Segment names become compartment names, comp_<id> when unnamed.
// Populates the segment-id lookups used by all later import steps.
func (rd *Reader) CreateMorphology(cell *Cell, nrn *sim.Neuron) error {
	segs := cell.Morph.Segments
	idToSeg := make(map[int]*Segment, len(segs))
	for _, seg := range segs {
		idToSeg[seg.ID] = seg
	}

	idToComp := make(map[int]sim.Compt, len(segs))
	idToName := make(map[int]string, len(segs))
	rd.SegToComp[cell.ID] = idToComp
	rd.SegToCompName[cell.ID] = idToName
	for _, seg := range segs {
		name := seg.Name
		if name == "" {
			name = fmt.Sprintf("comp_%d", seg.ID)
		}
		var ct sim.Compt
		if rd.Link == Symmetric {
			ct = sim.NewSymCompartment(nrn, name)
		} else {
			ct = sim.NewCompartment(nrn, name)
		}
		idToComp[seg.ID] = ct
		idToName[seg.ID] = name
	}

	srcTerm, dstTerm := "proximal", "distal"
	if rd.Link == Asymmetric {
		srcTerm, dstTerm = "axial", "raxial"
	}
	for _, seg := range segs {
		ct := idToComp[seg.ID]
		var parent *Segment
		if seg.Parent >= 0 {
			parent = idToSeg[seg.Parent]
			if parent == nil {
				return fmt.Errorf("nml2: segment %d in cell %s references unknown parent segment %d", seg.ID, cell.ID, seg.Parent)
			}
		}
		p0 := seg.Proximal
		if p0 == nil {
			if parent == nil {
				return &MissingGeometryError{Cell: cell.ID, Segment: seg.ID, Name: seg.Name}
			}
			p0 = parent.Distal
		}
		p1 := seg.Distal
		if p1 == nil {
			return fmt.Errorf("nml2: segment %d in cell %s has no distal point", seg.ID, cell.ID)
		}
		cm := ct.AsCompartment()
		cm.P0 = mat32.Vec3{X: p0.X, Y: p0.Y, Z: p0.Z}.MulScalar(rd.LUnit)
		cm.P = mat32.Vec3{X: p1.X, Y: p1.Y, Z: p1.Z}.MulScalar(rd.LUnit)
		cm.Length = cm.P.DistTo(cm.P0)
		// both ends of an engine compartment share one diameter: average
		// the two end diameters (tapered segments are not modeled exactly)
		cm.Diameter = (p0.Diameter + p1.Diameter) * rd.LUnit / 2
		if parent != nil {
			pct := idToComp[parent.ID]
			sim.Connect(ct, srcTerm, pct, dstTerm)
		}
	}

	groups, err := rd.resolveGroups(cell, idToSeg)
	if err != nil {
		return err
	}
	rd.CellGroups[cell.ID] = groups
	return nil
}

// CompForSeg returns the prototype compartment built for the given segment
// of the given cell.
func (rd *Reader) CompForSeg(cellID string, segID int) (*sim.Compartment, error) {
	comps, ok := rd.SegToComp[cellID]
	if !ok {
		return nil, fmt.Errorf("nml2: no morphology built for cell %s", cellID)
	}
	ct, ok := comps[segID]
	if !ok {
		return nil, fmt.Errorf("nml2: no compartment for segment %d in cell %s", segID, cellID)
	}
	return ct.AsCompartment(), nil
}

// comptElem returns the compartment for a segment as a connectable element.
func (rd *Reader) comptElem(cellID string, segID int) (sim.Compt, error) {
	ct, ok := rd.SegToComp[cellID][segID]
	if !ok {
		return nil, fmt.Errorf("nml2: no compartment for segment %d in cell %s", segID, cellID)
	}
	return ct, nil
}
