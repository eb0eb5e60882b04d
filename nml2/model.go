// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nml2

// model.go defines the NeuroML2 schema object model consumed by the Reader.
// This is the already-parsed document tree: a schema-aware loader (external
// to this repository) is responsible for producing it from XML.  Physical
// quantities stay as schema strings ("-65 mV") and are converted to engine
// units at import time through units.SI.

// Document is one parsed NeuroML2 document: the model definitions at the
// top level of the file.  Included sub-documents are separate Documents,
// read by separate Readers attached via Reader.AddInclude.
type Document struct {
	ID              string         `desc:"document identifier"`
	IonChannels     []*IonChannel  `desc:"ion channel definitions (ionChannel and ionChannelHH elements)"`
	ConcModels      []*ConcModel   `desc:"decaying-pool concentration model definitions"`
	PulseGenerators []*PulseGenDef `desc:"pulse-generator input source definitions"`
	Cells           []*Cell        `desc:"cell definitions"`
	Networks        []*Network     `desc:"network definitions -- only the first is instantiated"`
}

// Cell is one cell definition: a morphology plus optional biophysics.
type Cell struct {
	ID      string        `desc:"cell identifier, used as the prototype name"`
	Morph   Morphology    `desc:"the segment tree and its named groups"`
	Biophys *BiophysProps `desc:"biophysical properties -- nil for a bare morphology"`
}

// Morphology is a cell's segment tree and segment groups.
type Morphology struct {
	Segments []*Segment      `desc:"segments in document order"`
	Groups   []*SegmentGroup `desc:"named segment groups"`
}

// Segment is one piece of a cell's morphology: a frustum between a proximal
// and a distal 3D point, each with a diameter.  Coordinates are in the
// schema length unit (microns by default).
type Segment struct {
	ID       int    `desc:"segment id, unique within the cell"`
	Name     string `desc:"optional name -- used as the compartment name when set"`
	Parent   int    `desc:"id of the parent segment, or -1 for a root segment"`
	Proximal *Point `desc:"proximal end -- nil means inherit the parent's distal point"`
	Distal   *Point `desc:"distal end -- required"`
}

// Point is a 3D morphology point with a diameter, in schema length units.
type Point struct {
	X, Y, Z  float32 `desc:"position"`
	Diameter float32 `desc:"diameter at this point"`
}

// SegmentGroup is a named group of segments, by direct member ids and by
// inclusion of other groups.  The group id "all" is reserved: when not
// defined explicitly it is synthesized as every segment in the cell.
type SegmentGroup struct {
	ID       string   `desc:"group identifier"`
	Members  []int    `desc:"directly listed member segment ids"`
	Includes []string `desc:"ids of other groups whose members are included"`
}

// BiophysProps are a cell's biophysical properties.
type BiophysProps struct {
	Membrane      MembraneProps      `desc:"membrane properties"`
	Intracellular IntracellularProps `desc:"intracellular properties"`
}

// MembraneProps are the per-region membrane properties of a cell.
type MembraneProps struct {
	ChannelDensities     []*ChannelDensity `desc:"channel placements with conductance densities (channelDensity and channelDensityVShift elements)"`
	SpecificCapacitances []*GroupValue     `desc:"specific membrane capacitance per region"`
	InitMembPotentials   []*GroupValue     `desc:"initial membrane potential per region"`
}

// IntracellularProps are the per-region intracellular properties of a cell.
type IntracellularProps struct {
	Resistivities []*GroupValue `desc:"axial resistivity per region"`
	Species       []*Species    `desc:"ionic species with concentration pools per region"`
}

// GroupValue is one quantity applied across one segment group: the common
// shape of specific capacitance, initial potential and resistivity
// declarations.  An empty Group selects the entire morphology.
type GroupValue struct {
	Value string `desc:"quantity string, e.g. '-65 mV'"`
	Group string `desc:"target segment group id, 'all', or empty for the entire morphology"`
}

// ChannelDensity places an ion channel across a segment group at a given
// conductance density.
type ChannelDensity struct {
	ID          string `desc:"placement identifier, used as the channel copy name"`
	IonChannel  string `desc:"id of the referenced ion channel definition"`
	CondDensity string `desc:"conductance density quantity, e.g. '0.3 S_per_cm2'"`
	Erev        string `desc:"reversal potential quantity"`
	Group       string `desc:"target segment group id, 'all', or empty for the entire morphology"`
	VShift      string `desc:"voltage shift quantity for channelDensityVShift placements -- empty otherwise"`
}

// Species places an ionic concentration pool across a segment group.
type Species struct {
	ID        string `desc:"species identifier (e.g. 'ca'), used as the pool copy name"`
	ConcModel string `desc:"id of the referenced concentration model definition"`
	Group     string `desc:"target segment group id, 'all', or empty for the entire morphology"`
}

// IonChannel is one ion channel definition.
type IonChannel struct {
	ID    string  `desc:"channel identifier"`
	Type  string  `desc:"schema type: 'ionChannelHH', 'ionChannelPassive', or other"`
	Gates []*Gate `desc:"gating variables (gate and gateHHrates elements), at most 3"`
}

// Passive returns true if this channel is passive (leak): either declared
// as the passive type, or -- preserving the original reader's predicate --
// having no gates at all.
func (ch *IonChannel) Passive() bool {
	return ch.Type == "ionChannelPassive" || len(ch.Gates) == 0
}

// Gate is one gating variable of an ion channel, given either as
// forward/reverse rates, as time-course/steady-state functions, or as a
// steady state alongside the forward/reverse rates.
type Gate struct {
	ID          string       `desc:"gate identifier"`
	Instances   int          `desc:"exponent on the gating variable -- 0 means the schema default of 1"`
	Forward     *RateDef     `desc:"forward (alpha) rate function"`
	Reverse     *RateDef     `desc:"reverse (beta) rate function"`
	TimeCourse  *RateDef     `desc:"time course (tau) function"`
	SteadyState *RateDef     `desc:"steady state (inf) function"`
	Q10         *Q10Settings `desc:"temperature scaling of the gate rates -- nil for none"`
}

// RateDef is one parametric rate-function definition.
type RateDef struct {
	Type     string `desc:"schema type literal, e.g. 'HHExpLinearRate', or a custom component type"`
	Rate     string `desc:"rate parameter quantity"`
	Midpoint string `desc:"midpoint voltage quantity"`
	Scale    string `desc:"scale voltage quantity"`
}

// Q10Settings is the temperature correction declared on a gate.
type Q10Settings struct {
	Type             string `desc:"'q10Fixed' or 'q10ExpTemp'"`
	FixedQ10         string `desc:"fixed multiplier (q10Fixed)"`
	Q10Factor        string `desc:"Q10 factor (q10ExpTemp)"`
	ExperimentalTemp string `desc:"experimental temperature quantity (q10ExpTemp)"`
}

// ConcModel is one decaying-pool concentration model definition.
type ConcModel struct {
	ID             string `desc:"model identifier"`
	Name           string `desc:"optional name -- used as the prototype name when set"`
	Ion            string `desc:"ion species, e.g. 'ca'"`
	RestingConc    string `desc:"resting concentration quantity"`
	DecayConstant  string `desc:"decay time constant quantity"`
	ShellThickness string `desc:"shell thickness quantity"`
}

// PulseGenDef is one pulse-generator input source definition.
type PulseGenDef struct {
	ID        string `desc:"input source identifier"`
	Delay     string `desc:"delay before the pulse"`
	Duration  string `desc:"duration of the pulse"`
	Amplitude string `desc:"current amplitude of the pulse"`
}

// Network is one network definition: populations of cells plus the inputs
// wired onto them.
type Network struct {
	ID             string           `desc:"network identifier"`
	Type           string           `desc:"schema type -- 'networkWithTemperature' carries an ambient temperature"`
	Temperature    string           `desc:"ambient temperature quantity (networkWithTemperature only)"`
	Populations    []*Population    `desc:"cell populations"`
	ExplicitInputs []*ExplicitInput `desc:"individually targeted inputs"`
	InputLists     []*InputList     `desc:"listed inputs over one population"`
}

// Population instantiates a cell prototype a fixed number of times.
type Population struct {
	ID        string `desc:"population identifier"`
	Component string `desc:"id of the cell definition to instantiate"`
	Size      int    `desc:"number of instances, indexed 0..Size-1"`
}

// ExplicitInput wires one input source onto one compartment, with a target
// descriptor of the form "pop[index]" or "pop[index]/segmentId" (segment 0,
// the root, when omitted).
type ExplicitInput struct {
	Target string `desc:"target descriptor: population, instance index, optional segment id"`
	Input  string `desc:"id of the input source"`
}

// InputList wires one input source onto a list of (cell, segment) targets
// within one population.
type InputList struct {
	ID         string         `desc:"list identifier"`
	Component  string         `desc:"id of the input source"`
	Population string         `desc:"target population id"`
	Inputs     []*InputTarget `desc:"individual targets"`
}

// InputTarget is one entry of an InputList.
type InputTarget struct {
	ID         int `desc:"entry id"`
	TargetCell int `desc:"instance index within the population"`
	Segment    int `desc:"target segment id within the cell"`
}
