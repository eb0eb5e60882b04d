// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"github.com/goki/ki/ki"
	"github.com/goki/ki/kit"
)

// CaConc is a decaying ionic concentration pool (typically Ca2+) tracked in
// a thin shell just inside a compartment's membrane.  A prototype CaConc is
// built once per concentration-model definition and copied into each
// compartment that places it, with B rescaled per copy by the inverse of
// that compartment's shell volume.
type CaConc struct {
	Neutral
	CaBasal float32 `desc:"resting concentration (mM)"`
	Tau     float32 `desc:"decay time constant back to CaBasal (sec)"`
	Thick   float32 `desc:"shell thickness (m)"`
	B       float32 `desc:"current-to-concentration scale -- on the prototype this is the fixed baseline constant, rescaled by 1/(shell volume) on copy"`
}

var KiT_CaConc = kit.Types.AddType(&CaConc{}, nil)

// NewCaConc creates a CaConc with the given name under parent.
func NewCaConc(parent ki.Ki, name string) *CaConc {
	ca := &CaConc{}
	ca.InitName(ca, name)
	if parent != nil {
		parent.AddChild(ca)
	}
	return ca
}
