// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"testing"
)

// testCell builds /library/cell with a root soma and a child dend connected
// to it, the shape every prototype cell takes.
func testCell(t *testing.T) (lib *Neutral, cell *Neuron, soma, dend *Compartment) {
	lib = NewNeutral(nil, "library")
	cell = NewNeuron(lib, "cell")
	soma = NewCompartment(cell, "soma")
	dend = NewCompartment(cell, "dend")
	soma.Cm = 1e-12
	dend.Cm = 2e-12
	Connect(dend, "proximal", soma, "distal")
	return
}

func TestRelPath(t *testing.T) {
	_, cell, soma, dend := testCell(t)
	if rp := RelPath(dend, soma); rp != "../soma" {
		t.Errorf("RelPath(dend, soma) = %q, want %q", rp, "../soma")
	}
	if rp := RelPath(dend, cell); rp != ".." {
		t.Errorf("RelPath(dend, cell) = %q, want %q", rp, "..")
	}
	if got := dend.RelNode("../soma"); got != soma.This() {
		t.Errorf("RelNode(../soma) = %v, want soma", got)
	}
	if got := dend.RelNode("../nosuch"); got != nil {
		t.Errorf("RelNode of missing element = %v, want nil", got)
	}
}

func TestConnect(t *testing.T) {
	_, _, soma, dend := testCell(t)
	if len(dend.Msgs) != 1 {
		t.Fatalf("dend has %v msgs, want 1", len(dend.Msgs))
	}
	ms := dend.Msgs[0]
	if ms.SrcTerm != "proximal" || ms.DstTerm != "distal" {
		t.Errorf("msg terminals = %v -> %v, want proximal -> distal", ms.SrcTerm, ms.DstTerm)
	}
	if !dend.ConnectedTo("proximal", soma, "distal") {
		t.Errorf("dend not connected to soma")
	}
	if soma.ConnectedTo("proximal", dend, "distal") {
		t.Errorf("soma should hold no connection")
	}
}

func TestCopyCell(t *testing.T) {
	lib, cell, soma, _ := testCell(t)
	pop := NewNeutral(lib, "pop")
	cp := Copy(cell, pop, "0").(*Neuron)

	if cp.Path() == cell.Path() {
		t.Errorf("copy shares path with prototype: %v", cp.Path())
	}
	csoma := cp.ChildByName("soma", 0).(*Compartment)
	cdend := cp.ChildByName("dend", 0).(*Compartment)
	if csoma.Cm != 1e-12 || cdend.Cm != 2e-12 {
		t.Errorf("copied fields wrong: soma Cm %v, dend Cm %v", csoma.Cm, cdend.Cm)
	}

	// internal wiring follows the copy, not the prototype
	if !cdend.ConnectedTo("proximal", csoma, "distal") {
		t.Errorf("copied dend not connected to copied soma")
	}
	if cdend.ConnectedTo("proximal", soma, "distal") {
		t.Errorf("copied dend connected to prototype soma")
	}

	// copies are independently mutable
	csoma.Cm = 9e-12
	if soma.Cm != 1e-12 {
		t.Errorf("mutating copy changed prototype: soma Cm = %v", soma.Cm)
	}
}

func TestCopyChannel(t *testing.T) {
	lib := NewNeutral(nil, "library")
	proto := NewHHChannel(lib, "na")
	proto.XPower = 3
	proto.Gate(0).SetTables([]float32{1, 2, 3}, []float32{4, 5, 6})

	comp := NewCompartment(lib, "soma")
	cp := Copy(proto, comp, "naDens").(*HHChannel)
	cp.Gbar = 42
	cp.Gate(0).TableA.Values[0] = 99

	if proto.Gbar != 0 {
		t.Errorf("prototype Gbar modified: %v", proto.Gbar)
	}
	if proto.Gate(0).TableA.Values[0] != 1 {
		t.Errorf("prototype table modified: %v", proto.Gate(0).TableA.Values[0])
	}
	if cp.XPower != 3 {
		t.Errorf("copy XPower = %v, want 3", cp.XPower)
	}
	if got := cp.Gate(0).TableB.Values[2]; got != 6 {
		t.Errorf("copy TableB[2] = %v, want 6", got)
	}
}

func TestSpherical(t *testing.T) {
	cm := NewCompartment(nil, "sphere")
	cm.Diameter = 2e-6
	cm.Length = 0
	// spherical surface form: d^2 * pi
	want := float32(2e-6) * 2e-6 * 3.1415927
	if dif := cm.SArea() - want; dif > 1e-18 || dif < -1e-18 {
		t.Errorf("spherical SArea = %v, want %v", cm.SArea(), want)
	}
	cm.SetResistivity(1)
	wantRa := float32(8) / (2e-6 * 3.1415927)
	if dif := cm.Ra - wantRa; dif > 1 || dif < -1 {
		t.Errorf("spherical Ra = %v, want %v", cm.Ra, wantRa)
	}
}
