// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nml2

import (
	"log"

	"github.com/emer/nml2/units"
)

// ImportBiophysics applies the cell's biophysical properties to its
// prototype compartments.  A cell with no biophysics is legal (a bare
// morphology) and only logged.  Channel and pool prototypes must already
// be imported.
func (rd *Reader) ImportBiophysics(cell *Cell) error {
	bp := cell.Biophys
	if bp == nil {
		log.Printf("nml2: warning: cell %s has no biophysical properties\n", cell.ID)
		return nil
	}
	if err := rd.ImportMembraneProperties(cell, &bp.Membrane); err != nil {
		return err
	}
	return rd.ImportIntracellularProperties(cell, &bp.Intracellular)
}

// ImportMembraneProperties applies the membrane property families:
// specific capacitance, channel densities, initial membrane potential.
func (rd *Reader) ImportMembraneProperties(cell *Cell, mp *MembraneProps) error {
	if err := rd.ImportCapacitances(cell, mp.SpecificCapacitances); err != nil {
		return err
	}
	if err := rd.ImportChannelsToCell(cell, mp.ChannelDensities); err != nil {
		return err
	}
	return rd.ImportInitMembPotential(cell, mp.InitMembPotentials)
}

// ImportCapacitances sets each target compartment's total membrane
// capacitance to surface area x specific capacitance.
func (rd *Reader) ImportCapacitances(cell *Cell, caps []*GroupValue) error {
	for _, sc := range caps {
		cm, err := units.SI(sc.Value)
		if err != nil {
			return err
		}
		segs, err := rd.targetSegments(cell, sc.Group)
		if err != nil {
			return err
		}
		for _, seg := range segs {
			comp, err := rd.CompForSeg(cell.ID, seg.ID)
			if err != nil {
				return err
			}
			comp.Cm = comp.SArea() * cm
		}
	}
	return nil
}

// ImportInitMembPotential sets each target compartment's initial membrane
// potential.
func (rd *Reader) ImportInitMembPotential(cell *Cell, pots []*GroupValue) error {
	for _, imp := range pots {
		initv, err := units.SI(imp.Value)
		if err != nil {
			return err
		}
		segs, err := rd.targetSegments(cell, imp.Group)
		if err != nil {
			return err
		}
		for _, seg := range segs {
			comp, err := rd.CompForSeg(cell.ID, seg.ID)
			if err != nil {
				return err
			}
			comp.InitVm = initv
		}
	}
	return nil
}

// ImportIntracellularProperties applies axial resistivity and ionic
// species pools.
func (rd *Reader) ImportIntracellularProperties(cell *Cell, ip *IntracellularProps) error {
	if err := rd.ImportAxialResistance(cell, ip.Resistivities); err != nil {
		return err
	}
	return rd.ImportSpecies(cell, ip.Species)
}

// ImportAxialResistance sets each target compartment's axial resistance
// from the region's specific resistivity.
func (rd *Reader) ImportAxialResistance(cell *Cell, ress []*GroupValue) error {
	for _, r := range ress {
		res, err := units.SI(r.Value)
		if err != nil {
			return err
		}
		segs, err := rd.targetSegments(cell, r.Group)
		if err != nil {
			return err
		}
		for _, seg := range segs {
			comp, err := rd.CompForSeg(cell.ID, seg.ID)
			if err != nil {
				return err
			}
			comp.SetResistivity(res)
		}
	}
	return nil
}

// ImportSpecies copies the referenced concentration pool prototype into
// every compartment of each species' target region.  A species whose
// concentration model has no prototype anywhere is a MissingPrototypeError.
func (rd *Reader) ImportSpecies(cell *Cell, species []*Species) error {
	for _, sp := range species {
		segs, err := rd.targetSegments(cell, sp.Group)
		if err != nil {
			return err
		}
		for _, seg := range segs {
			comp, err := rd.CompForSeg(cell.ID, seg.ID)
			if err != nil {
				return err
			}
			if _, err := rd.CopySpecies(sp, comp); err != nil {
				return err
			}
		}
	}
	return nil
}

// ImportChannelsToCell applies each channel density declaration: passive
// channels set membrane resistance and reversal potential directly on the
// target compartments; gated channels are copied from their prototype into
// each target compartment with per-compartment Gbar and Ek.  Densities with
// a voltage shift copy from a shifted prototype variant.  A density
// referencing an unknown channel definition is logged and skipped -- the
// channel may be defined outside the loaded scope.
func (rd *Reader) ImportChannelsToCell(cell *Cell, dens []*ChannelDensity) error {
	for _, chdens := range dens {
		segs, err := rd.targetSegments(cell, chdens.Group)
		if err != nil {
			return err
		}
		condDens, err := units.SI(chdens.CondDensity)
		if err != nil {
			return err
		}
		erev, err := units.SI(chdens.Erev)
		if err != nil {
			return err
		}
		vShift, err := units.SI(chdens.VShift)
		if err != nil {
			return err
		}
		chdef, ok := rd.FindChannelDef(chdens.IonChannel)
		if !ok {
			log.Printf("nml2: no channel with id %s referred to by %s -- skipped\n", chdens.IonChannel, chdens.ID)
			continue
		}
		if chdef.Passive() {
			for _, seg := range segs {
				comp, err := rd.CompForSeg(cell.ID, seg.ID)
				if err != nil {
					return err
				}
				comp.SetPassive(condDens, erev)
			}
			continue
		}
		for _, seg := range segs {
			ct, err := rd.comptElem(cell.ID, seg.ID)
			if err != nil {
				return err
			}
			if _, err := rd.CopyChannel(chdens, ct, condDens, erev, vShift); err != nil {
				return err
			}
		}
	}
	return nil
}
