// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package sim provides the simulation-engine object tree that the NeuroML2
reader populates: a hierarchical namespace of named elements addressed by
path, supporting connection of named terminals between elements and deep
copying of prototype subtrees.

Elements embed ki.Node for naming, parent/child structure, paths and deep
cloning.  Terminal connections are recorded on the source element with the
destination stored as a path relative to the source, so copying a prototype
tree (a whole cell, a channel) preserves all wiring internal to the copied
subtree.

The numerical integration that consumes these objects is outside this
repository -- sim covers only the structural surface the translator drives:
creation, field setting, Connect and Copy.
*/
package sim

import (
	"strings"

	"github.com/goki/ki/ki"
	"github.com/goki/ki/kit"
)

// Msg is one recorded terminal connection: data flowing from the named
// source terminal on the element holding the Msg to the named destination
// terminal on the element at Dst, a path relative to the holder.
type Msg struct {
	SrcTerm string `desc:"name of the source terminal on the holding element"`
	Dst     string `desc:"path of the destination element, relative to the holding element"`
	DstTerm string `desc:"name of the destination terminal"`
}

// Elem is implemented by every simulation tree element.
type Elem interface {
	ki.Ki

	// AsNeutral returns the embedded Neutral base of the element.
	AsNeutral() *Neutral
}

// Neutral is the base simulation element: a named node in the element tree
// with no physical fields of its own, used directly for grouping (library
// root, populations, input containers) and embedded by every concrete
// element kind.
type Neutral struct {
	ki.Node
	Msgs []Msg `desc:"terminal connections originating at this element"`
}

var KiT_Neutral = kit.Types.AddType(&Neutral{}, nil)

// NewNeutral creates a Neutral element with the given name, added as a
// child of parent if non-nil.
func NewNeutral(parent ki.Ki, name string) *Neutral {
	nt := &Neutral{}
	nt.InitName(nt, name)
	if parent != nil {
		parent.AddChild(nt)
	}
	return nt
}

func (nt *Neutral) AsNeutral() *Neutral { return nt }

// Neuron is a container element for one cell: its children are the cell's
// compartments.  Cell prototypes are Neurons under the library root, and
// population instances are copies of those Neurons.
type Neuron struct {
	Neutral
}

var KiT_Neuron = kit.Types.AddType(&Neuron{}, nil)

// NewNeuron creates a Neuron element with the given name under parent.
func NewNeuron(parent ki.Ki, name string) *Neuron {
	nr := &Neuron{}
	nr.InitName(nr, name)
	if parent != nil {
		parent.AddChild(nr)
	}
	return nr
}

// Connect records a connection from the named source terminal on src to the
// named destination terminal on dst.  The destination is stored relative to
// src, so connections wholly inside a prototype subtree remain valid inside
// copies of that subtree.
func Connect(src Elem, srcTerm string, dst Elem, dstTerm string) {
	sn := src.AsNeutral()
	sn.Msgs = append(sn.Msgs, Msg{SrcTerm: srcTerm, Dst: RelPath(src, dst), DstTerm: dstTerm})
}

// Copy deep-copies the prototype element proto, including all of its
// children and their fields, adds the copy under parent with the given
// name, and returns it.
func Copy(proto ki.Ki, parent ki.Ki, name string) ki.Ki {
	cp := proto.Clone()
	cp.SetName(name)
	if parent != nil {
		parent.AddChild(cp)
	}
	return cp
}

// RelPath returns the path of element dst relative to element src, using
// ".." to traverse up from src.
func RelPath(src, dst ki.Ki) string {
	sp := strings.Split(src.Path(), "/")
	dp := strings.Split(dst.Path(), "/")
	ci := 0
	for ci < len(sp) && ci < len(dp) && sp[ci] == dp[ci] {
		ci++
	}
	var parts []string
	for range sp[ci:] {
		parts = append(parts, "..")
	}
	parts = append(parts, dp[ci:]...)
	return strings.Join(parts, "/")
}

// RelNode resolves a path relative to this element (as produced by RelPath)
// and returns the element there, or nil if any step is missing.
func (nt *Neutral) RelNode(rel string) ki.Ki {
	cur := nt.This()
	for _, p := range strings.Split(rel, "/") {
		switch p {
		case "", ".":
		case "..":
			cur = cur.Parent()
		default:
			cur = cur.ChildByName(p, 0)
		}
		if cur == nil {
			return nil
		}
	}
	return cur
}

// MsgDst resolves the destination element of the i-th recorded connection.
func (nt *Neutral) MsgDst(i int) ki.Ki {
	return nt.RelNode(nt.Msgs[i].Dst)
}

// ConnectedTo reports whether this element has a connection from the named
// source terminal to the named destination terminal on dst.
func (nt *Neutral) ConnectedTo(srcTerm string, dst ki.Ki, dstTerm string) bool {
	for i, ms := range nt.Msgs {
		if ms.SrcTerm == srcTerm && ms.DstTerm == dstTerm && nt.MsgDst(i) == dst.This() {
			return true
		}
	}
	return false
}
