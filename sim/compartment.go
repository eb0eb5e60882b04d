// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"github.com/chewxy/math32"
	"github.com/goki/ki/ki"
	"github.com/goki/ki/kit"
	"github.com/goki/mat32"
)

// Compartment is one finite electrical piece of a neuron: a cylinder (or
// sphere, when Length is 0) of membrane with its passive cable parameters.
// All fields are in engine (SI) units.
type Compartment struct {
	Neutral
	P0       mat32.Vec3 `desc:"proximal (start) end position (m)"`
	P        mat32.Vec3 `desc:"distal (end) position (m)"`
	Length   float32    `desc:"length between the two ends (m) -- 0 for a spherical compartment"`
	Diameter float32    `desc:"diameter, the mean of the two end diameters (m)"`
	Cm       float32    `desc:"total membrane capacitance (F)"`
	Rm       float32    `desc:"total membrane resistance (ohm)"`
	Ra       float32    `desc:"axial resistance to the parent compartment (ohm)"`
	Em       float32    `desc:"membrane reversal (leak battery) potential (V)"`
	InitVm   float32    `desc:"initial membrane potential (V)"`
}

var KiT_Compartment = kit.Types.AddType(&Compartment{}, nil)

// NewCompartment creates a Compartment with the given name under parent.
func NewCompartment(parent ki.Ki, name string) *Compartment {
	cm := &Compartment{}
	cm.InitName(cm, name)
	if parent != nil {
		parent.AddChild(cm)
	}
	return cm
}

// Compt is implemented by all compartment kinds (Compartment and
// SymCompartment).
type Compt interface {
	Elem

	// AsCompartment returns the embedded Compartment.
	AsCompartment() *Compartment
}

func (cm *Compartment) AsCompartment() *Compartment { return cm }

// SArea returns the membrane surface area: length x diameter x pi for a
// cylinder, or diameter^2 x pi for a zero-length (spherical) compartment.
func (cm *Compartment) SArea() float32 {
	if cm.Length > 0 {
		return cm.Length * cm.Diameter * math32.Pi
	}
	return cm.Diameter * cm.Diameter * math32.Pi
}

// XArea returns the axial cross-sectional area from the diameter.
func (cm *Compartment) XArea() float32 {
	return cm.Diameter * cm.Diameter * math32.Pi / 4
}

// SetResistivity sets the axial resistance Ra from a specific axial
// resistivity (ohm m): resistivity x length / cross-section for a cylinder,
// with resistivity x 8 / (diameter x pi) as the fallback for zero-length
// (spherical) compartments.
func (cm *Compartment) SetResistivity(res float32) {
	if cm.Length > 0 {
		cm.Ra = res * cm.Length / cm.XArea()
	} else {
		cm.Ra = res * 8 / (cm.Diameter * math32.Pi)
	}
}

// SetPassive sets the membrane resistance and reversal potential from a
// passive channel: conductance density (S/m^2) over the full surface area,
// and the channel reversal potential (V).
func (cm *Compartment) SetPassive(condDens, erev float32) {
	cm.Rm = 1 / (condDens * cm.SArea())
	cm.Em = erev
}

// SymCompartment is a Compartment whose axial linkage to its parent is
// symmetric: the axial resistance is split across the proximal/distal
// terminal pairing instead of the one-sided axial/raxial pairing.
type SymCompartment struct {
	Compartment
}

var KiT_SymCompartment = kit.Types.AddType(&SymCompartment{}, nil)

// NewSymCompartment creates a SymCompartment with the given name under
// parent.
func NewSymCompartment(parent ki.Ki, name string) *SymCompartment {
	cm := &SymCompartment{}
	cm.InitName(cm, name)
	if parent != nil {
		parent.AddChild(cm)
	}
	return cm
}
