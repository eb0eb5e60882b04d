// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nml2

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"github.com/emer/etable/minmax"
	"github.com/emer/nml2/hhfit"
	"github.com/emer/nml2/sim"
	"github.com/emer/nml2/units"
)

// CaBaseScale is the fixed baseline current-to-concentration constant of a
// pool prototype: B = CaBaseScale / (shell volume), with the division by
// shell volume applied when the prototype is copied into a compartment.
const CaBaseScale = 5.2e-6

// ImportIonChannels builds one reusable prototype per gated ion channel
// definition in the document, and registers every definition (passive ones
// included) for density resolution.  Passive channels get no prototype:
// densities referencing them set compartment fields directly.
func (rd *Reader) ImportIonChannels(doc *Document) error {
	for _, ch := range doc.IonChannels {
		if !ch.Passive() {
			mchan, err := rd.CreateHHChannel(ch, 0)
			if err != nil {
				return err
			}
			rd.ProtoChans[ch.ID] = mchan
		}
		rd.IDToChan[ch.ID] = ch
	}
	return nil
}

// CreateHHChannel builds the prototype for one gated channel definition:
// up to three gate axes, each with its power and its A/B conductance
// tables sampled across the reader's voltage domain, Q10-corrected for the
// ambient temperature.  vShift is the voltage shift handed to generic-form
// rate evaluation -- 0 for plain channel definitions, the placement's shift
// for channelDensityVShift prototype variants.
func (rd *Reader) CreateHHChannel(ch *IonChannel, vShift float32) (*sim.HHChannel, error) {
	if len(ch.Gates) > len(sim.GateNames) {
		return nil, fmt.Errorf("nml2: channel %s has %d gates -- at most %d are supported", ch.ID, len(ch.Gates), len(sim.GateNames))
	}
	mchan := sim.NewHHChannel(rd.Lib, ch.ID)
	var rng minmax.F32
	rng.Set(rd.VMin, rd.VMax)
	for gi, gate := range ch.Gates {
		mgate := mchan.Gate(gi)
		pow := gate.Instances
		if pow == 0 { // schema default
			pow = 1
		}
		mchan.SetPower(gi, float32(pow))
		mgate.Range = rng
		mgate.Divs = rd.VDivs

		rd.GatePaths[ch.ID+"/"+gate.ID] = ch.ID + "/" + mgate.Name()

		q10, err := rd.q10Scale(gate)
		if err != nil {
			return nil, err
		}

		var alpha, beta []float32
		if gate.Forward != nil && gate.Reverse != nil {
			alpha, err = rd.rateTable(gate.Forward, rng, rd.VDivs, vShift)
			if err != nil {
				return nil, err
			}
			beta, err = rd.rateTable(gate.Reverse, rng, rd.VDivs, vShift)
			if err != nil {
				return nil, err
			}
			ta := make([]float32, rd.VDivs)
			tb := make([]float32, rd.VDivs)
			for i := range ta {
				ta[i] = q10 * alpha[i]
				tb[i] = q10 * (alpha[i] + beta[i])
			}
			mgate.SetTables(ta, tb)
		}
		if gate.TimeCourse != nil && gate.SteadyState != nil {
			tau, err := rd.rateTable(gate.TimeCourse, rng, rd.VDivs, vShift)
			if err != nil {
				return nil, err
			}
			inf, err := rd.rateTable(gate.SteadyState, rng, rd.VDivs, vShift)
			if err != nil {
				return nil, err
			}
			ta := make([]float32, rd.VDivs)
			tb := make([]float32, rd.VDivs)
			for i := range ta {
				ta[i] = q10 * inf[i] / tau[i]
				tb[i] = q10 / tau[i]
			}
			mgate.SetTables(ta, tb)
		}
		if gate.SteadyState != nil && gate.TimeCourse == nil {
			// the time course must be derived from this gate's own
			// forward/reverse rates: require them explicitly instead of
			// reading whatever an earlier branch may have left behind
			if alpha == nil || beta == nil {
				return nil, fmt.Errorf("nml2: gate %s of channel %s gives only a steady state -- forward and reverse rates are required to derive its time course", gate.ID, ch.ID)
			}
			inf, err := rd.rateTable(gate.SteadyState, rng, rd.VDivs, vShift)
			if err != nil {
				return nil, err
			}
			ta := make([]float32, rd.VDivs)
			tb := make([]float32, rd.VDivs)
			for i := range ta {
				tau := 1 / (alpha[i] + beta[i])
				ta[i] = q10 * inf[i] / tau
				tb[i] = q10 / tau
			}
			mgate.SetTables(ta, tb)
		}
	}
	return mchan, nil
}

// q10Scale returns the temperature correction multiplier for a gate's
// rates at the reader's ambient temperature: 1 when the gate declares no
// Q10 settings, the fixed multiplier for q10Fixed, or
// q10Factor^((temp - experimentalTemp)/10) for q10ExpTemp.
func (rd *Reader) q10Scale(gate *Gate) (float32, error) {
	qs := gate.Q10
	if qs == nil {
		return 1, nil
	}
	switch qs.Type {
	case "q10Fixed":
		return units.SI(qs.FixedQ10)
	case "q10ExpTemp":
		q10f, err := units.SI(qs.Q10Factor)
		if err != nil {
			return 0, err
		}
		expTemp, err := units.SI(qs.ExperimentalTemp)
		if err != nil {
			return 0, err
		}
		return math32.Pow(q10f, (rd.Temp-expTemp)/10), nil
	}
	return 0, &UnknownQ10ScalingTypeError{Type: qs.Type, Gate: gate.ID}
}

// rateTable samples one rate-function definition across the voltage range:
// the standard closed set of forms is evaluated directly, anything else
// goes through the component evaluator with the sample voltage, the
// voltage shift, and the ambient temperature.
func (rd *Reader) rateTable(rt *RateDef, rng minmax.F32, divs int, vShift float32) ([]float32, error) {
	fun := hhfit.FromType(rt.Type)
	if fun != hhfit.Generic {
		rate, err := units.SI(rt.Rate)
		if err != nil {
			return nil, err
		}
		mid, err := units.SI(rt.Midpoint)
		if err != nil {
			return nil, err
		}
		scale, err := units.SI(rt.Scale)
		if err != nil {
			return nil, err
		}
		rf := hhfit.RateFn{Fun: fun, Rate: rate, Scale: scale, Midpoint: mid}
		return rf.Table(rng, divs), nil
	}
	if rd.CompEval == nil {
		return nil, fmt.Errorf("nml2: rate function type %s is not a standard form and no component evaluator is set", rt.Type)
	}
	tab := make([]float32, divs)
	inc := rng.Range() / float32(divs-1)
	for i := range tab {
		v := rng.Min + float32(i)*inc
		vals, err := rd.CompEval.EvalComponent(rt.Type, map[string]float32{
			"v":           v,
			"vShift":      vShift,
			"temperature": rd.Temp,
		})
		if err != nil {
			return nil, err
		}
		r, ok := firstOf(vals, "x", "t", "r")
		if !ok {
			return nil, fmt.Errorf("nml2: component %s returned none of the x, t, r fields", rt.Type)
		}
		tab[i] = r
	}
	return tab, nil
}

// firstOf returns the first of the named fields present in vals.
func firstOf(vals map[string]float32, names ...string) (float32, bool) {
	for _, nm := range names {
		if v, ok := vals[nm]; ok {
			return v, true
		}
	}
	return 0, false
}

// CopyChannel copies the channel prototype referenced by a density
// declaration into the target compartment, scales its Gbar by the
// compartment surface area x conductance density, sets its reversal
// potential, rewrites gate bookkeeping paths to the copy's identifier, and
// connects the copy's channel terminal to the compartment's.  A non-zero
// vShift (channelDensityVShift placements) copies from a shifted prototype
// variant instead, built on first use with the shift threaded into
// generic-form rate evaluation.
func (rd *Reader) CopyChannel(chdens *ChannelDensity, ct sim.Compt, condDens, erev, vShift float32) (*sim.HHChannel, error) {
	protoID := chdens.IonChannel
	if vShift != 0 {
		protoID = fmt.Sprintf("%s_vshift%g", chdens.IonChannel, vShift)
		if _, ok := rd.FindChannelProto(protoID); !ok {
			chdef, ok := rd.FindChannelDef(chdens.IonChannel)
			if !ok {
				return nil, &MissingPrototypeError{Kind: "channel", ID: chdens.IonChannel, Ref: chdens.ID}
			}
			shifted := *chdef
			shifted.ID = protoID
			mchan, err := rd.CreateHHChannel(&shifted, vShift)
			if err != nil {
				return nil, err
			}
			rd.ProtoChans[protoID] = mchan
		}
	}
	proto, ok := rd.FindChannelProto(protoID)
	if !ok {
		return nil, &MissingPrototypeError{Kind: "channel", ID: protoID, Ref: chdens.ID}
	}
	mchan := sim.Copy(proto, ct, chdens.ID).(*sim.HHChannel)

	protoPfx := protoID + "/"
	copyPfx := chdens.ID + "/"
	paths := make([]string, 0, len(rd.GatePaths))
	for p := range rd.GatePaths {
		paths = append(paths, p)
	}
	for _, p := range paths {
		if strings.HasPrefix(p, protoPfx) {
			rd.GatePaths[copyPfx+strings.TrimPrefix(p, protoPfx)] = copyPfx + strings.TrimPrefix(rd.GatePaths[p], protoPfx)
		}
	}

	comp := ct.AsCompartment()
	mchan.Gbar = comp.SArea() * condDens
	mchan.Ek = erev
	sim.Connect(mchan, "channel", ct, "channel")
	return mchan, nil
}

// ImportConcentrationModels builds one pool prototype per decaying-pool
// concentration model in the document.
func (rd *Reader) ImportConcentrationModels(doc *Document) error {
	for _, cm := range doc.ConcModels {
		if _, err := rd.CreateConcModel(cm); err != nil {
			return err
		}
	}
	return nil
}

// CreateConcModel builds the prototype pool for one decaying-pool
// concentration model: resting concentration, decay tau, shell thickness,
// and the fixed baseline scale constant (rescaled per copy by shell
// volume).
func (rd *Reader) CreateConcModel(cm *ConcModel) (*sim.CaConc, error) {
	name := cm.Name
	if name == "" {
		name = cm.ID
	}
	ca := sim.NewCaConc(rd.Lib, name)
	var err error
	if ca.CaBasal, err = units.SI(cm.RestingConc); err != nil {
		return nil, err
	}
	if ca.Tau, err = units.SI(cm.DecayConstant); err != nil {
		return nil, err
	}
	if ca.Thick, err = units.SI(cm.ShellThickness); err != nil {
		return nil, err
	}
	ca.B = CaBaseScale
	rd.ProtoPools[cm.ID] = ca
	return ca, nil
}

// CopySpecies copies the species' pool prototype into the compartment,
// rescaling the baseline constant by the inverse of the compartment's
// shell volume.  A shell thickness at or beyond half the compartment
// diameter yields a non-positive volume and is a fatal geometry fault for
// that copy.
func (rd *Reader) CopySpecies(sp *Species, comp *sim.Compartment) (*sim.CaConc, error) {
	proto, ok := rd.FindPoolProto(sp.ConcModel)
	if !ok {
		return nil, &MissingPrototypeError{Kind: "pool", ID: sp.ConcModel, Ref: sp.ID}
	}
	pool := sim.Copy(proto, comp, sp.ID).(*sim.CaConc)
	vol := math32.Pi * comp.Length * (0.5*comp.Diameter + pool.Thick) * (0.5*comp.Diameter - pool.Thick)
	if vol <= 0 {
		return nil, fmt.Errorf("nml2: species %s in compartment %s: shell thickness %v must be less than half the diameter %v (shell volume %v)", sp.ID, comp.Name(), pool.Thick, comp.Diameter, vol)
	}
	pool.B /= vol
	return pool, nil
}
