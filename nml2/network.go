// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nml2

import (
	"fmt"
	"strconv"

	"github.com/emer/nml2/sim"
	"github.com/emer/nml2/units"
)

// ImportInputs builds one pulse-generator element per input source
// definition, under the library's inputs container.
func (rd *Reader) ImportInputs(doc *Document) error {
	if len(doc.PulseGenerators) == 0 {
		return nil
	}
	minputs := sim.NewNeutral(rd.Lib, "inputs")
	for _, pgd := range doc.PulseGenerators {
		pg := sim.NewPulseGen(minputs, pgd.ID)
		var err error
		if pg.FirstDelay, err = units.SI(pgd.Delay); err != nil {
			return err
		}
		if pg.FirstWidth, err = units.SI(pgd.Duration); err != nil {
			return err
		}
		if pg.FirstLevel, err = units.SI(pgd.Amplitude); err != nil {
			return err
		}
		pg.SecondDelay = 1e9 // one-shot
	}
	return nil
}

// CreatePopulations copies each population's cell prototype size times
// under a population-scoped namespace, indexed 0..size-1, and records the
// (population, index) -> instance map.
func (rd *Reader) CreatePopulations() error {
	for _, pop := range rd.Net.Populations {
		proto, ok := rd.ProtoCells[pop.Component]
		if !ok {
			return &MissingPrototypeError{Kind: "cell", ID: pop.Component, Ref: pop.ID}
		}
		mpop := sim.NewNeutral(rd.Lib, pop.ID)
		rd.PopCells[pop.ID] = make(map[int]*sim.Neuron, pop.Size)
		rd.PopToCellType[pop.ID] = pop.Component
		for i := 0; i < pop.Size; i++ {
			inst := sim.Copy(proto, mpop, strconv.Itoa(i)).(*sim.Neuron)
			rd.PopCells[pop.ID][i] = inst
		}
	}
	return nil
}

// CreateInputs wires the network's inputs: for each explicit input, the
// named source's output terminal is connected to the injection terminal of
// the compartment its target descriptor resolves to; input lists resolve
// each listed (cell, segment) pair the same way.
func (rd *Reader) CreateInputs() error {
	for _, el := range rd.Net.ExplicitInputs {
		pop, index, segID, err := parseInputTarget(el.Target)
		if err != nil {
			return err
		}
		input, err := rd.Input(el.Input)
		if err != nil {
			return err
		}
		comp, err := rd.Comp(pop, index, segID)
		if err != nil {
			return err
		}
		sim.Connect(input, "output", comp, "injectMsg")
	}
	for _, il := range rd.Net.InputLists {
		input, err := rd.Input(il.Component)
		if err != nil {
			return fmt.Errorf("nml2: input list %s: %v", il.ID, err)
		}
		for _, it := range il.Inputs {
			comp, err := rd.Comp(il.Population, it.TargetCell, it.Segment)
			if err != nil {
				return fmt.Errorf("nml2: input list %s: %v", il.ID, err)
			}
			sim.Connect(input, "output", comp, "injectMsg")
		}
	}
	return nil
}
