// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package hhfit provides the parametric rate-function forms used by
Hodgkin-Huxley style channel gates in NeuroML2: exponential, sigmoid and
exponential-linear ("linoid") voltage dependence, each parameterized by a
rate, a scale and a midpoint.

The schema names a closed set of standard forms; anything outside that set
is a schema-defined component that must be evaluated by an external
component evaluator, represented here by the Generic tag.  Gate tables are
filled by sampling a form across a voltage range.
*/
package hhfit

import (
	"github.com/chewxy/math32"
	"github.com/emer/etable/minmax"
	"github.com/goki/ki/kit"
)

// Funcs are the rate-function forms: the standard NeuroML2 HH forms as
// explicit evaluators, plus Generic for schema-defined component types
// that require an external evaluator.
type Funcs int

//go:generate stringer -type=Funcs

var KiT_Funcs = kit.Enums.AddEnum(FuncsN, kit.NotBitFlag, nil)

func (ev Funcs) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Funcs) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Exp is HHExpRate: rate * exp((v - midpoint) / scale)
	Exp Funcs = iota

	// Sigmoid is HHSigmoidRate: rate / (1 + exp((midpoint - v) / scale))
	Sigmoid

	// SigmoidVar is HHSigmoidVariable: same curve as Sigmoid, used by the
	// schema where the variable is a gate value rather than a rate
	SigmoidVar

	// ExpLinear is HHExpLinearRate (linoid): rate * x / (1 - exp(-x))
	// with x = (v - midpoint) / scale, evaluating to rate at x = 0
	ExpLinear

	// Generic is any non-standard form, evaluated through a schema-defined
	// component by an external evaluator
	Generic

	FuncsN
)

// FromType returns the form tag for a NeuroML2 rate type literal.
// Unrecognized literals are Generic.
func FromType(typ string) Funcs {
	switch typ {
	case "HHExpRate":
		return Exp
	case "HHSigmoidRate":
		return Sigmoid
	case "HHSigmoidVariable":
		return SigmoidVar
	case "HHExpLinearRate":
		return ExpLinear
	}
	return Generic
}

// RateFn is one rate function: a form tag and its parameters, all in
// engine (SI) units.
type RateFn struct {
	Fun      Funcs   `desc:"the rate-function form"`
	Rate     float32 `desc:"rate parameter (magnitude of the function, 1/sec for rates)"`
	Scale    float32 `desc:"voltage scale of the form (volts)"`
	Midpoint float32 `desc:"voltage midpoint of the form (volts)"`
}

// Std returns true if the form has an explicit evaluator here -- Generic
// forms must be evaluated by an external component evaluator instead.
func (rf *RateFn) Std() bool {
	return rf.Fun >= Exp && rf.Fun < Generic
}

// Eval evaluates the form at membrane potential v (volts).
// Generic forms evaluate to 0 -- callers must route them to an external
// evaluator (see Std).
func (rf *RateFn) Eval(v float32) float32 {
	switch rf.Fun {
	case Exp:
		return rf.Rate * math32.Exp((v-rf.Midpoint)/rf.Scale)
	case Sigmoid, SigmoidVar:
		return rf.Rate / (1 + math32.Exp((rf.Midpoint-v)/rf.Scale))
	case ExpLinear:
		x := (v - rf.Midpoint) / rf.Scale
		if math32.Abs(x) < 1e-6 { // limit of x / (1 - exp(-x)) at 0
			return rf.Rate
		}
		return rf.Rate * x / (1 - math32.Exp(-x))
	}
	return 0
}

// Table samples the form across voltage range rng at divs evenly spaced
// points (divs >= 2, endpoints included).
func (rf *RateFn) Table(rng minmax.F32, divs int) []float32 {
	tab := make([]float32, divs)
	inc := rng.Range() / float32(divs-1)
	for i := range tab {
		tab[i] = rf.Eval(rng.Min + float32(i)*inc)
	}
	return tab
}
