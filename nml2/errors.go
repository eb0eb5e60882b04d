// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nml2

import "fmt"

// MissingGeometryError reports a segment with no explicit proximal point
// and no parent segment to inherit one from.  Fatal: aborts the enclosing
// cell's geometry build.
type MissingGeometryError struct {
	Cell    string
	Segment int
	Name    string
}

func (e *MissingGeometryError) Error() string {
	return fmt.Sprintf("nml2: no proximal point and no parent segment for segment name=%s, id=%d in cell %s", e.Name, e.Segment, e.Cell)
}

// MissingPrototypeError reports a channel or pool reference whose prototype
// was not found in this reader or in any included reader.  Fatal for the
// import step that required it.
type MissingPrototypeError struct {
	Kind string // "channel" or "pool"
	ID   string // the referenced definition id
	Ref  string // id of the referencing declaration
}

func (e *MissingPrototypeError) Error() string {
	return fmt.Sprintf("nml2: no prototype %s for %s referred to by %s", e.Kind, e.ID, e.Ref)
}

// UnknownQ10ScalingTypeError reports an unsupported q10Settings type
// literal on a gate.
type UnknownQ10ScalingTypeError struct {
	Type string
	Gate string
}

func (e *UnknownQ10ScalingTypeError) Error() string {
	return fmt.Sprintf("nml2: unknown Q10 scaling type %s on gate %s", e.Type, e.Gate)
}
