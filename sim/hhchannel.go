// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"github.com/emer/etable/etensor"
	"github.com/emer/etable/minmax"
	"github.com/goki/ki/ki"
	"github.com/goki/ki/kit"
)

// GateNames are the fixed names of the (up to) three gate children of an
// HHChannel, in gate-axis order.
var GateNames = []string{"gateX", "gateY", "gateZ"}

// HHGate is one voltage-dependent gating variable of an HHChannel, holding
// the sampled conductance tables that drive its kinetics: TableA is the
// forward-rate (alpha) table and TableB the rate-sum (alpha + beta) table,
// both sampled across the voltage Range.
type HHGate struct {
	Neutral
	Range  minmax.F32       `desc:"voltage domain of the tables (V)"`
	Divs   int              `desc:"number of samples across the domain"`
	TableA *etensor.Float32 `desc:"forward-rate (alpha) table"`
	TableB *etensor.Float32 `desc:"rate-sum (alpha + beta) table"`
}

var KiT_HHGate = kit.Types.AddType(&HHGate{}, nil)

// SetTables sets the A and B tables from raw sample values.
func (hg *HHGate) SetTables(a, b []float32) {
	hg.TableA = etensor.NewFloat32([]int{len(a)}, nil, nil)
	copy(hg.TableA.Values, a)
	hg.TableB = etensor.NewFloat32([]int{len(b)}, nil, nil)
	copy(hg.TableB.Values, b)
}

// CopyFieldsFrom deep-copies gate fields, cloning the tables so that copies
// of a channel prototype do not share table storage with the prototype.
func (hg *HHGate) CopyFieldsFrom(frm any) {
	fr, ok := frm.(*HHGate)
	if !ok {
		hg.Neutral.CopyFieldsFrom(frm)
		return
	}
	hg.Range = fr.Range
	hg.Divs = fr.Divs
	hg.TableA = nil
	hg.TableB = nil
	if fr.TableA != nil {
		hg.TableA = fr.TableA.Clone().(*etensor.Float32)
	}
	if fr.TableB != nil {
		hg.TableB = fr.TableB.Clone().(*etensor.Float32)
	}
}

// HHChannel is a Hodgkin-Huxley style voltage-gated ion channel: a maximal
// conductance and reversal potential, modulated by up to three gate axes
// (children gateX, gateY, gateZ) each raised to its own power.
// A prototype HHChannel is built once per channel definition and copied
// into each compartment that places it, with Gbar and Ek set per copy.
type HHChannel struct {
	Neutral
	Gbar   float32 `desc:"maximal channel conductance (S) -- surface area x conductance density in the placing compartment"`
	Ek     float32 `desc:"reversal potential (V)"`
	XPower float32 `desc:"exponent on the gateX gating variable -- 0 = gate unused"`
	YPower float32 `desc:"exponent on the gateY gating variable -- 0 = gate unused"`
	ZPower float32 `desc:"exponent on the gateZ gating variable -- 0 = gate unused"`
}

var KiT_HHChannel = kit.Types.AddType(&HHChannel{}, nil)

// NewHHChannel creates an HHChannel with the given name under parent, with
// its three gate children in place (powers 0 until set).
func NewHHChannel(parent ki.Ki, name string) *HHChannel {
	hh := &HHChannel{}
	hh.InitName(hh, name)
	if parent != nil {
		parent.AddChild(hh)
	}
	for _, gnm := range GateNames {
		hg := &HHGate{}
		hg.InitName(hg, gnm)
		hh.AddChild(hg)
	}
	return hh
}

// Gate returns the gate on the given axis (0 = X, 1 = Y, 2 = Z), or nil.
func (hh *HHChannel) Gate(axis int) *HHGate {
	if axis < 0 || axis >= len(GateNames) {
		return nil
	}
	kid := hh.ChildByName(GateNames[axis], 0)
	if kid == nil {
		return nil
	}
	return kid.(*HHGate)
}

// SetPower sets the gating-variable exponent for the given gate axis.
func (hh *HHChannel) SetPower(axis int, pow float32) {
	switch axis {
	case 0:
		hh.XPower = pow
	case 1:
		hh.YPower = pow
	case 2:
		hh.ZPower = pow
	}
}
