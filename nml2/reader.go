// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package nml2 translates parsed NeuroML2 documents into the object tree of a
compartmental simulation engine (the sim package): one compartment per
morphology segment, per-region biophysics, reusable channel and pool
prototypes copied into place, and populations of whole-cell copies wired to
their inputs.

The Reader is a one-shot, single-threaded batch translator: one Read call
per document, populating one engine namespace.  It is not safe for
concurrent use.  Included sub-documents are read by separate Readers
attached via AddInclude, whose prototype registries are consulted in attach
order when a local lookup misses.
*/
package nml2

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/emer/emergent/timer"
	"github.com/emer/nml2/sim"
	"github.com/emer/nml2/units"
	"github.com/goki/ki/kit"
)

// LinkModes selects how consecutive compartments are linked axially.
type LinkModes int

//go:generate stringer -type=LinkModes

var KiT_LinkModes = kit.Enums.AddEnum(LinkModesN, kit.NotBitFlag, nil)

func (ev LinkModes) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *LinkModes) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Symmetric links SymCompartments through the proximal / distal
	// terminal pairing, splitting axial resistance across the junction
	Symmetric LinkModes = iota

	// Asymmetric links plain Compartments through the one-sided
	// axial / raxial terminal pairing
	Asymmetric

	LinkModesN
)

// ComponentEvaluator evaluates a schema-defined component type over named
// input variables, returning named output fields.  It is the required
// fallback for rate functions outside the standard closed set: the reader
// calls it per table sample with variables v (volts), vShift (volts) and
// temperature (celsius), and consumes the first of the x, t, r output
// fields present.
type ComponentEvaluator interface {
	EvalComponent(typ string, vars map[string]float32) (map[string]float32, error)
}

// Reader reads one parsed NeuroML2 document and builds the corresponding
// engine prototype tree under its library root.  All lookups the Reader
// holds are non-owning: the engine tree owns every element.
type Reader struct {
	Doc   *Document    `desc:"the document being read"`
	Net   *Network     `desc:"the document's network, if any -- only the first is instantiated"`
	Link  LinkModes    `desc:"compartment linkage mode"`
	Temp  float32      `desc:"ambient temperature (celsius) from the network element, 0 if none -- passed explicitly into all rate-table construction"`
	LUnit float32      `desc:"schema length unit in engine units -- default 1e-6 (micron -> meter)"`
	VMin  float32      `desc:"lower bound of gate table voltage domains (V)"`
	VMax  float32      `desc:"upper bound of gate table voltage domains (V)"`
	VDivs int          `desc:"number of samples across gate table voltage domains"`
	Lib   *sim.Neutral `desc:"engine library root that everything is built under"`

	CompEval ComponentEvaluator `desc:"evaluator for non-standard rate-function component types -- required only when a document uses them"`

	ProtoCells map[string]*sim.Neuron    `desc:"cell id -> whole-cell prototype"`
	ProtoChans map[string]*sim.HHChannel `desc:"channel id -> channel prototype (non-passive channels only)"`
	ProtoPools map[string]*sim.CaConc    `desc:"concentration model id -> pool prototype"`
	IDToChan   map[string]*IonChannel    `desc:"channel id -> schema definition"`

	SegToComp     map[string]map[int]sim.Compt     `desc:"cell id -> segment id -> compartment"`
	SegToCompName map[string]map[int]string        `desc:"cell id -> segment id -> compartment name"`
	CellGroups    map[string]map[string][]*Segment `desc:"cell id -> group id -> expanded segment list"`

	PopCells      map[string]map[int]*sim.Neuron `desc:"population id -> instance index -> cell instance"`
	PopToCellType map[string]string              `desc:"population id -> cell definition id"`

	GatePaths map[string]string `desc:"channel-id/gate-id -> channel-id/engine-gate-name bookkeeping, rewritten to copy ids on channel copy"`

	Includes []*Reader `desc:"readers of included sub-documents, searched in order on prototype lookup miss"`

	RecFunTimes bool                   `desc:"record timing per read phase -- only for instrumentation"`
	FunTimes    map[string]*timer.Time `view:"-" desc:"timers per read phase, when RecFunTimes is on"`
}

// NewReader returns a Reader with default settings and an empty library
// root named "library".
func NewReader() *Reader {
	rd := &Reader{}
	rd.Defaults()
	rd.Lib = sim.NewNeutral(nil, "library")
	rd.ProtoCells = make(map[string]*sim.Neuron)
	rd.ProtoChans = make(map[string]*sim.HHChannel)
	rd.ProtoPools = make(map[string]*sim.CaConc)
	rd.IDToChan = make(map[string]*IonChannel)
	rd.SegToComp = make(map[string]map[int]sim.Compt)
	rd.SegToCompName = make(map[string]map[int]string)
	rd.CellGroups = make(map[string]map[string][]*Segment)
	rd.PopCells = make(map[string]map[int]*sim.Neuron)
	rd.PopToCellType = make(map[string]string)
	rd.GatePaths = make(map[string]string)
	rd.FunTimes = make(map[string]*timer.Time)
	return rd
}

// Defaults sets default reader parameters: symmetric linkage, micron length
// unit, [-150mV, 100mV] gate domain with 5000 samples.
func (rd *Reader) Defaults() {
	rd.Link = Symmetric
	rd.LUnit = 1e-6
	rd.VMin = -150e-3
	rd.VMax = 100e-3
	rd.VDivs = 5000
}

// AddInclude attaches the reader of an included sub-document.  Prototype
// lookups that miss locally consult included readers in attach order.
func (rd *Reader) AddInclude(inc *Reader) {
	rd.Includes = append(rd.Includes, inc)
}

// Read translates the document into the engine tree under Lib: channel and
// pool prototypes first, then one whole-cell prototype per cell definition,
// then populations and inputs if the document has a network.
func (rd *Reader) Read(doc *Document) error {
	rd.Doc = doc
	if len(doc.Networks) > 0 {
		rd.Net = doc.Networks[0]
		temp, err := rd.temperature()
		if err != nil {
			return err
		}
		rd.Temp = temp
	}
	rd.FunTimerStart("ConcModels")
	err := rd.ImportConcentrationModels(doc)
	rd.FunTimerStop("ConcModels")
	if err != nil {
		return err
	}
	rd.FunTimerStart("IonChannels")
	err = rd.ImportIonChannels(doc)
	rd.FunTimerStop("IonChannels")
	if err != nil {
		return err
	}
	rd.FunTimerStart("Inputs")
	err = rd.ImportInputs(doc)
	rd.FunTimerStop("Inputs")
	if err != nil {
		return err
	}
	rd.FunTimerStart("Cells")
	for _, cell := range doc.Cells {
		if _, err := rd.CreateCellPrototype(cell); err != nil {
			rd.FunTimerStop("Cells")
			return err
		}
	}
	rd.FunTimerStop("Cells")
	if rd.Net != nil {
		rd.FunTimerStart("Network")
		err = rd.CreatePopulations()
		if err == nil {
			err = rd.CreateInputs()
		}
		rd.FunTimerStop("Network")
		if err != nil {
			return err
		}
	}
	return nil
}

// temperature returns the ambient temperature of the network, in celsius:
// the networkWithTemperature value, or 0 for networks with no temperature
// dependence.
func (rd *Reader) temperature() (float32, error) {
	if rd.Net != nil && rd.Net.Type == "networkWithTemperature" {
		return units.SI(rd.Net.Temperature)
	}
	return 0, nil
}

// FindChannelDef looks up an ion channel definition by id, first locally,
// then in each included reader in attach order.
func (rd *Reader) FindChannelDef(id string) (*IonChannel, bool) {
	if ch, ok := rd.IDToChan[id]; ok {
		return ch, true
	}
	for _, inc := range rd.Includes {
		if ch, ok := inc.FindChannelDef(id); ok {
			return ch, true
		}
	}
	return nil, false
}

// FindChannelProto looks up a channel prototype by id, first locally, then
// in each included reader in attach order.
func (rd *Reader) FindChannelProto(id string) (*sim.HHChannel, bool) {
	if ch, ok := rd.ProtoChans[id]; ok {
		return ch, true
	}
	for _, inc := range rd.Includes {
		if ch, ok := inc.FindChannelProto(id); ok {
			return ch, true
		}
	}
	return nil, false
}

// FindPoolProto looks up a concentration pool prototype by id, first
// locally, then in each included reader in attach order.
func (rd *Reader) FindPoolProto(id string) (*sim.CaConc, bool) {
	if ca, ok := rd.ProtoPools[id]; ok {
		return ca, true
	}
	for _, inc := range rd.Includes {
		if ca, ok := inc.FindPoolProto(id); ok {
			return ca, true
		}
	}
	return nil, false
}

// CellInPopulation returns the index-th cell instance of the population.
func (rd *Reader) CellInPopulation(pop string, index int) (*sim.Neuron, error) {
	insts, ok := rd.PopCells[pop]
	if !ok {
		return nil, fmt.Errorf("nml2: no population %s", pop)
	}
	inst, ok := insts[index]
	if !ok {
		return nil, fmt.Errorf("nml2: no instance %d in population %s", index, pop)
	}
	return inst, nil
}

// Comp returns the compartment for the given segment id within the
// index-th cell instance of the population, through the segment-to-name
// mapping captured during the geometry build.
func (rd *Reader) Comp(pop string, index, segID int) (*sim.Compartment, error) {
	inst, err := rd.CellInPopulation(pop, index)
	if err != nil {
		return nil, err
	}
	cellType, ok := rd.PopToCellType[pop]
	if !ok {
		return nil, fmt.Errorf("nml2: no cell type recorded for population %s", pop)
	}
	name, ok := rd.SegToCompName[cellType][segID]
	if !ok {
		return nil, fmt.Errorf("nml2: no segment %d in cell %s (population %s)", segID, cellType, pop)
	}
	kid := inst.ChildByName(name, 0)
	if kid == nil {
		return nil, fmt.Errorf("nml2: no compartment %s in instance %d of population %s", name, index, pop)
	}
	ct, ok := kid.(sim.Compt)
	if !ok {
		return nil, fmt.Errorf("nml2: element %s in instance %d of population %s is not a compartment", name, index, pop)
	}
	return ct.AsCompartment(), nil
}

// Input returns the input source element with the given id.
func (rd *Reader) Input(id string) (*sim.PulseGen, error) {
	inputs := rd.Lib.ChildByName("inputs", 0)
	if inputs == nil {
		return nil, fmt.Errorf("nml2: no inputs imported")
	}
	kid := inputs.ChildByName(id, 0)
	if kid == nil {
		return nil, fmt.Errorf("nml2: no input %s", id)
	}
	pg, ok := kid.(*sim.PulseGen)
	if !ok {
		return nil, fmt.Errorf("nml2: input %s is not a pulse generator", id)
	}
	return pg, nil
}

// parseInputTarget parses an explicit-input target descriptor of the form
// "pop[index]" or "pop[index]/segmentId" -- segment defaults to 0, the
// root segment.
func parseInputTarget(tgt string) (pop string, index, segID int, err error) {
	lb := strings.Index(tgt, "[")
	rb := strings.Index(tgt, "]")
	if lb < 0 || rb < lb {
		return "", 0, 0, fmt.Errorf("nml2: malformed input target %q", tgt)
	}
	pop = tgt[:lb]
	index, err = strconv.Atoi(tgt[lb+1 : rb])
	if err != nil {
		return "", 0, 0, fmt.Errorf("nml2: malformed instance index in input target %q", tgt)
	}
	if sl := strings.Index(tgt, "/"); sl >= 0 {
		segID, err = strconv.Atoi(tgt[sl+1:])
		if err != nil {
			return "", 0, 0, fmt.Errorf("nml2: malformed segment id in input target %q", tgt)
		}
	}
	return pop, index, segID, nil
}

// FunTimerStart starts a read-phase timer -- ensures creation of the timer.
// No-op when RecFunTimes is off.
func (rd *Reader) FunTimerStart(fun string) {
	if !rd.RecFunTimes {
		return
	}
	ft, ok := rd.FunTimes[fun]
	if !ok {
		ft = &timer.Time{}
		rd.FunTimes[fun] = ft
	}
	ft.Start()
}

// FunTimerStop stops a read-phase timer.  No-op when RecFunTimes is off.
func (rd *Reader) FunTimerStop(fun string) {
	if !rd.RecFunTimes {
		return
	}
	rd.FunTimes[fun].Stop()
}

// TimerReport reports read-phase timing to the log, networkbase style.
func (rd *Reader) TimerReport() {
	log.Printf("TimerReport: %v read phases\n", len(rd.FunTimes))
	for fn, ft := range rd.FunTimes {
		log.Printf("\t%13s \t%6.4g secs\n", fn, ft.TotalSecs())
	}
}
