// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"github.com/goki/ki/ki"
	"github.com/goki/ki/kit"
)

// PulseGen is a square-pulse current source: after FirstDelay it emits
// FirstLevel for FirstWidth on its "output" terminal, which the network
// instantiator connects to a target compartment's "injectMsg" terminal.
// SecondDelay is set far in the future for one-shot pulses.
type PulseGen struct {
	Neutral
	FirstDelay  float32 `desc:"delay before the pulse (sec)"`
	FirstWidth  float32 `desc:"duration of the pulse (sec)"`
	FirstLevel  float32 `desc:"amplitude of the pulse (A)"`
	SecondDelay float32 `desc:"delay before any second pulse (sec) -- large for one-shot"`
}

var KiT_PulseGen = kit.Types.AddType(&PulseGen{}, nil)

// NewPulseGen creates a PulseGen with the given name under parent.
func NewPulseGen(parent ki.Ki, name string) *PulseGen {
	pg := &PulseGen{}
	pg.InitName(pg, name)
	if parent != nil {
		parent.AddChild(pg)
	}
	return pg
}
