// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nml2

import (
	"errors"
	"fmt"
	"testing"

	"github.com/chewxy/math32"
	"github.com/emer/etable/etensor"
	"github.com/emer/etable/minmax"
	"github.com/emer/nml2/hhfit"
	"github.com/emer/nml2/sim"
	"github.com/emer/nml2/units"
)

// test gate rate definitions: the classic Na activation pair
var (
	naAlpha = &RateDef{Type: "HHExpLinearRate", Rate: "1 per_ms", Midpoint: "-40 mV", Scale: "10 mV"}
	naBeta  = &RateDef{Type: "HHExpRate", Rate: "4 per_ms", Midpoint: "-65 mV", Scale: "-18 mV"}
	hTau    = &RateDef{Type: "HHExpRate", Rate: "1 ms", Midpoint: "-60 mV", Scale: "20 mV"}
	hInf    = &RateDef{Type: "HHSigmoidRate", Rate: "1", Midpoint: "-50 mV", Scale: "-7 mV"}
)

func naChannel() *IonChannel {
	return &IonChannel{ID: "na", Type: "ionChannelHH", Gates: []*Gate{
		{ID: "m", Instances: 3, Forward: naAlpha, Reverse: naBeta},
	}}
}

// testReader returns a reader with a coarse gate table for fast tests.
func testReader() *Reader {
	rd := NewReader()
	rd.VDivs = 16
	return rd
}

func cmprTab(got *etensor.Float32, want []float32, msg string, t *testing.T) {
	if got == nil {
		t.Errorf("%v: table not set", msg)
		return
	}
	if len(got.Values) != len(want) {
		t.Errorf("%v: table has %v samples, want %v", msg, len(got.Values), len(want))
		return
	}
	for i := range want {
		cmpr(got.Values[i], want[i], msg, t)
	}
}

// rateFns returns the reference alpha/beta samples for the Na activation
// pair across the reader's table domain.
func rateFns(rd *Reader) (alpha, beta []float32) {
	var rng minmax.F32
	rng.Set(rd.VMin, rd.VMax)
	af := hhfit.RateFn{Fun: hhfit.ExpLinear, Rate: 1000, Scale: 0.010, Midpoint: -0.040}
	bf := hhfit.RateFn{Fun: hhfit.Exp, Rate: 4000, Scale: -0.018, Midpoint: -0.065}
	return af.Table(rng, rd.VDivs), bf.Table(rng, rd.VDivs)
}

func TestCreateHHChannel(t *testing.T) {
	rd := testReader()
	mchan, err := rd.CreateHHChannel(naChannel(), 0)
	if err != nil {
		t.Fatal(err)
	}
	cmpr(mchan.XPower, 3, "XPower", t)
	cmpr(mchan.YPower, 0, "YPower", t)
	if mchan.Gbar != 0 || mchan.Ek != 0 {
		t.Errorf("prototype carries placement fields: Gbar %v Ek %v", mchan.Gbar, mchan.Ek)
	}
	alpha, beta := rateFns(rd)
	ab := make([]float32, len(alpha))
	for i := range ab {
		ab[i] = alpha[i] + beta[i]
	}
	mg := mchan.Gate(0)
	cmprTab(mg.TableA, alpha, "TableA = alpha", t)
	cmprTab(mg.TableB, ab, "TableB = alpha + beta", t)
	cmpr(mg.Range.Min, rd.VMin, "table range min", t)
	cmpr(mg.Range.Max, rd.VMax, "table range max", t)
	if mg.Divs != rd.VDivs {
		t.Errorf("gate divs %v, want %v", mg.Divs, rd.VDivs)
	}
	if rd.GatePaths["na/m"] != "na/gateX" {
		t.Errorf("gate path for na/m is %q", rd.GatePaths["na/m"])
	}
}

func TestGateDefaultPower(t *testing.T) {
	rd := testReader()
	ch := naChannel()
	ch.Gates[0].Instances = 0 // schema default
	mchan, err := rd.CreateHHChannel(ch, 0)
	if err != nil {
		t.Fatal(err)
	}
	cmpr(mchan.XPower, 1, "default power", t)
}

func TestTauInfGate(t *testing.T) {
	rd := testReader()
	ch := &IonChannel{ID: "h_chan", Type: "ionChannelHH", Gates: []*Gate{
		{ID: "h", Instances: 1, TimeCourse: hTau, SteadyState: hInf},
	}}
	mchan, err := rd.CreateHHChannel(ch, 0)
	if err != nil {
		t.Fatal(err)
	}
	var rng minmax.F32
	rng.Set(rd.VMin, rd.VMax)
	tf := hhfit.RateFn{Fun: hhfit.Exp, Rate: 1e-3, Scale: 0.020, Midpoint: -0.060}
	sf := hhfit.RateFn{Fun: hhfit.Sigmoid, Rate: 1, Scale: -0.007, Midpoint: -0.050}
	tau := tf.Table(rng, rd.VDivs)
	inf := sf.Table(rng, rd.VDivs)
	wa := make([]float32, len(tau))
	wb := make([]float32, len(tau))
	for i := range wa {
		wa[i] = inf[i] / tau[i]
		wb[i] = 1 / tau[i]
	}
	mg := mchan.Gate(0)
	cmprTab(mg.TableA, wa, "TableA = inf / tau", t)
	cmprTab(mg.TableB, wb, "TableB = 1 / tau", t)
}

func TestSteadyStateWithRates(t *testing.T) {
	rd := testReader()
	ch := &IonChannel{ID: "mix", Type: "ionChannelHH", Gates: []*Gate{
		{ID: "m", Instances: 1, Forward: naAlpha, Reverse: naBeta, SteadyState: hInf},
	}}
	mchan, err := rd.CreateHHChannel(ch, 0)
	if err != nil {
		t.Fatal(err)
	}
	var rng minmax.F32
	rng.Set(rd.VMin, rd.VMax)
	alpha, beta := rateFns(rd)
	sf := hhfit.RateFn{Fun: hhfit.Sigmoid, Rate: 1, Scale: -0.007, Midpoint: -0.050}
	inf := sf.Table(rng, rd.VDivs)
	wa := make([]float32, len(alpha))
	wb := make([]float32, len(alpha))
	for i := range wa {
		// tau is derived from the gate's own rates
		wb[i] = alpha[i] + beta[i]
		wa[i] = inf[i] * wb[i]
	}
	mg := mchan.Gate(0)
	cmprTab(mg.TableA, wa, "TableA = inf / tau, tau = 1/(alpha+beta)", t)
	cmprTab(mg.TableB, wb, "TableB = alpha + beta", t)
}

func TestSteadyStateAloneFails(t *testing.T) {
	rd := testReader()
	ch := &IonChannel{ID: "bad", Type: "ionChannelHH", Gates: []*Gate{
		{ID: "z", Instances: 1, SteadyState: hInf},
	}}
	if _, err := rd.CreateHHChannel(ch, 0); err == nil {
		t.Fatal("steady state without forward/reverse rates did not fail")
	}
}

func TestTooManyGates(t *testing.T) {
	rd := testReader()
	ch := &IonChannel{ID: "big", Type: "ionChannelHH", Gates: []*Gate{
		{ID: "a", Forward: naAlpha, Reverse: naBeta},
		{ID: "b", Forward: naAlpha, Reverse: naBeta},
		{ID: "c", Forward: naAlpha, Reverse: naBeta},
		{ID: "d", Forward: naAlpha, Reverse: naBeta},
	}}
	if _, err := rd.CreateHHChannel(ch, 0); err == nil {
		t.Fatal("four-gate channel did not fail")
	}
}

func TestQ10ExpTemp(t *testing.T) {
	rd := testReader()
	rd.Temp = 32
	ch := naChannel()
	ch.Gates[0].Q10 = &Q10Settings{Type: "q10ExpTemp", Q10Factor: "3", ExperimentalTemp: "6.3 degC"}
	mchan, err := rd.CreateHHChannel(ch, 0)
	if err != nil {
		t.Fatal(err)
	}
	q10 := math32.Pow(3, (32-6.3)/10)
	alpha, beta := rateFns(rd)
	wa := make([]float32, len(alpha))
	wb := make([]float32, len(alpha))
	for i := range wa {
		wa[i] = q10 * alpha[i]
		wb[i] = q10 * (alpha[i] + beta[i])
	}
	mg := mchan.Gate(0)
	cmprTab(mg.TableA, wa, "q10ExpTemp TableA", t)
	cmprTab(mg.TableB, wb, "q10ExpTemp TableB", t)
}

func TestQ10Fixed(t *testing.T) {
	rd := testReader()
	ch := naChannel()
	ch.Gates[0].Q10 = &Q10Settings{Type: "q10Fixed", FixedQ10: "2.5"}
	mchan, err := rd.CreateHHChannel(ch, 0)
	if err != nil {
		t.Fatal(err)
	}
	alpha, _ := rateFns(rd)
	mg := mchan.Gate(0)
	cmpr(mg.TableA.Values[0], 2.5*alpha[0], "q10Fixed scaling", t)
}

func TestQ10UnknownType(t *testing.T) {
	rd := testReader()
	ch := naChannel()
	ch.Gates[0].Q10 = &Q10Settings{Type: "q10Weird"}
	_, err := rd.CreateHHChannel(ch, 0)
	if err == nil {
		t.Fatal("unknown Q10 scaling type did not fail")
	}
	var qe *UnknownQ10ScalingTypeError
	if !errors.As(err, &qe) {
		t.Errorf("error is %T, want UnknownQ10ScalingTypeError", err)
	}
	if qe != nil && qe.Gate != "m" {
		t.Errorf("error names gate %q, want m", qe.Gate)
	}
}

// constEval evaluates every component type to a fixed rate.
type constEval struct {
	r float32
}

func (ce constEval) EvalComponent(typ string, vars map[string]float32) (map[string]float32, error) {
	return map[string]float32{"r": ce.r}, nil
}

func TestGenericRateForm(t *testing.T) {
	rd := testReader()
	rd.CompEval = constEval{r: 2}
	ch := &IonChannel{ID: "gen", Type: "ionChannelHH", Gates: []*Gate{
		{ID: "m", Instances: 1,
			Forward: &RateDef{Type: "myAlphaRate"},
			Reverse: naBeta},
	}}
	mchan, err := rd.CreateHHChannel(ch, 0)
	if err != nil {
		t.Fatal(err)
	}
	_, beta := rateFns(rd)
	wa := make([]float32, len(beta))
	wb := make([]float32, len(beta))
	for i := range wa {
		wa[i] = 2
		wb[i] = 2 + beta[i]
	}
	mg := mchan.Gate(0)
	cmprTab(mg.TableA, wa, "generic alpha", t)
	cmprTab(mg.TableB, wb, "generic alpha + standard beta", t)
}

func TestGenericRateFormNoEvaluator(t *testing.T) {
	rd := testReader()
	ch := &IonChannel{ID: "gen", Type: "ionChannelHH", Gates: []*Gate{
		{ID: "m", Instances: 1,
			Forward: &RateDef{Type: "myAlphaRate"},
			Reverse: naBeta},
	}}
	if _, err := rd.CreateHHChannel(ch, 0); err == nil {
		t.Fatal("generic rate form without an evaluator did not fail")
	}
}

// vShiftEval reports a rate offset by the voltage shift it is handed.
type vShiftEval struct{}

func (vShiftEval) EvalComponent(typ string, vars map[string]float32) (map[string]float32, error) {
	return map[string]float32{"r": 100 + 1000*vars["vShift"]}, nil
}

func TestVShiftDensity(t *testing.T) {
	doc := passiveCellDoc()
	doc.IonChannels = append(doc.IonChannels, &IonChannel{ID: "kv", Type: "ionChannelHH", Gates: []*Gate{
		{ID: "n", Instances: 1, Forward: &RateDef{Type: "myAlphaRate"}, Reverse: naBeta},
	}})
	doc.Cells[0].Biophys.Membrane.ChannelDensities = append(
		doc.Cells[0].Biophys.Membrane.ChannelDensities,
		&ChannelDensity{ID: "kvDens", IonChannel: "kv", CondDensity: "10 S_per_m2", Erev: "-77 mV", Group: "all"},
		&ChannelDensity{ID: "kvShiftDens", IonChannel: "kv", CondDensity: "10 S_per_m2", Erev: "-77 mV", Group: "all", VShift: "10 mV"})
	rd := testReader()
	rd.CompEval = vShiftEval{}
	if err := rd.Read(doc); err != nil {
		t.Fatal(err)
	}

	// the shifted placement builds one prototype variant on first use
	vs, err := units.SI("10 mV")
	if err != nil {
		t.Fatal(err)
	}
	shiftID := fmt.Sprintf("kv_vshift%g", vs)
	if _, ok := rd.ProtoChans[shiftID]; !ok {
		t.Fatalf("no shifted prototype variant %s", shiftID)
	}

	soma, _ := rd.CompForSeg("pass_cell", 0)
	plain := soma.ChildByName("kvDens", 0).(*sim.HHChannel)
	shifted := soma.ChildByName("kvShiftDens", 0).(*sim.HHChannel)
	cmpr(plain.Gate(0).TableA.Values[0], 100, "unshifted alpha", t)
	cmpr(shifted.Gate(0).TableA.Values[0], 100+1000*vs, "shifted alpha", t)
	// gate bookkeeping follows the shifted copy too
	if rd.GatePaths["kvShiftDens/n"] != "kvShiftDens/gateX" {
		t.Errorf("gate path for kvShiftDens/n is %q", rd.GatePaths["kvShiftDens/n"])
	}
}

// hhCellDoc is the passive reference cell with the Na channel placed over
// the whole morphology at 10 S/m^2.
func hhCellDoc() *Document {
	doc := passiveCellDoc()
	doc.IonChannels = append(doc.IonChannels, naChannel())
	doc.Cells[0].Biophys.Membrane.ChannelDensities = append(
		doc.Cells[0].Biophys.Membrane.ChannelDensities,
		&ChannelDensity{ID: "naDens", IonChannel: "na", CondDensity: "10 S_per_m2", Erev: "50 mV", Group: "all"})
	return doc
}

func TestCopyChannel(t *testing.T) {
	rd := testReader()
	if err := rd.Read(hhCellDoc()); err != nil {
		t.Fatal(err)
	}
	proto := rd.ProtoChans["na"]
	soma, _ := rd.CompForSeg("pass_cell", 0)
	dend, _ := rd.CompForSeg("pass_cell", 1)
	for _, comp := range []*sim.Compartment{soma, dend} {
		kid := comp.ChildByName("naDens", 0)
		if kid == nil {
			t.Fatalf("no channel copy in %s", comp.Name())
		}
		mchan := kid.(*sim.HHChannel)
		cmpr(mchan.Gbar, comp.SArea()*10, "copy Gbar in "+comp.Name(), t)
		cmpr(mchan.Ek, 0.050, "copy Ek in "+comp.Name(), t)
		cmpr(mchan.XPower, 3, "copy XPower in "+comp.Name(), t)
		if !mchan.ConnectedTo("channel", comp, "channel") {
			t.Errorf("channel copy in %s not connected to its compartment", comp.Name())
		}
	}
	if proto.Gbar != 0 {
		t.Errorf("placement scaled the prototype Gbar: %v", proto.Gbar)
	}
	// gate bookkeeping paths are rewritten to the copy's identifier
	if rd.GatePaths["naDens/m"] != "naDens/gateX" {
		t.Errorf("gate path for naDens/m is %q", rd.GatePaths["naDens/m"])
	}

	// copies own their table storage
	somaChan := soma.ChildByName("naDens", 0).(*sim.HHChannel)
	sg := somaChan.Gate(0)
	orig := proto.Gate(0).TableA.Values[0]
	sg.TableA.Values[0] = orig + 42
	if proto.Gate(0).TableA.Values[0] != orig {
		t.Errorf("mutating a copy's table changed the prototype")
	}
}

func TestChannelFromInclude(t *testing.T) {
	incRd := testReader()
	if err := incRd.Read(&Document{ID: "chans_inc", IonChannels: []*IonChannel{naChannel()}}); err != nil {
		t.Fatal(err)
	}
	doc := hhCellDoc()
	doc.IonChannels = doc.IonChannels[:1] // passive only: na comes from the include
	rd := testReader()
	rd.AddInclude(incRd)
	if err := rd.Read(doc); err != nil {
		t.Fatal(err)
	}
	soma, _ := rd.CompForSeg("pass_cell", 0)
	if soma.ChildByName("naDens", 0) == nil {
		t.Errorf("channel defined in an included document was not placed")
	}
}

// caPoolDoc is the passive reference cell with a decaying calcium pool over
// the whole morphology.
func caPoolDoc() *Document {
	doc := passiveCellDoc()
	doc.ConcModels = []*ConcModel{
		{ID: "CaPool", Ion: "ca", RestingConc: "1e-4 mM", DecayConstant: "13.333 ms", ShellThickness: "0.1 um"},
	}
	doc.Cells[0].Biophys.Intracellular.Species = []*Species{
		{ID: "ca", ConcModel: "CaPool", Group: "all"},
	}
	return doc
}

func TestCopySpecies(t *testing.T) {
	rd := testReader()
	if err := rd.Read(caPoolDoc()); err != nil {
		t.Fatal(err)
	}
	proto := rd.ProtoPools["CaPool"]
	cmpr(proto.CaBasal, 1e-4, "prototype resting concentration", t)
	cmpr(proto.Tau, 13.333e-3, "prototype decay tau", t)
	cmpr(proto.Thick, 1e-7, "prototype shell thickness", t)
	cmpr(proto.B, CaBaseScale, "prototype B unscaled", t)

	soma, _ := rd.CompForSeg("pass_cell", 0)
	dend, _ := rd.CompForSeg("pass_cell", 1)
	var pools [2]*sim.CaConc
	for i, comp := range []*sim.Compartment{soma, dend} {
		kid := comp.ChildByName("ca", 0)
		if kid == nil {
			t.Fatalf("no pool copy in %s", comp.Name())
		}
		pool := kid.(*sim.CaConc)
		vol := math32.Pi * comp.Length * (0.5*comp.Diameter + pool.Thick) * (0.5*comp.Diameter - pool.Thick)
		cmpr(pool.B, CaBaseScale/vol, "pool B in "+comp.Name(), t)
		pools[i] = pool
	}
	// the bigger the shell, the smaller the scaling constant
	if pools[0].B >= pools[1].B {
		t.Errorf("soma pool B %v not below dend pool B %v", pools[0].B, pools[1].B)
	}
}

func TestShellThickerThanRadius(t *testing.T) {
	doc := caPoolDoc()
	doc.ConcModels[0].ShellThickness = "2 um" // beyond both radii
	rd := testReader()
	if err := rd.Read(doc); err == nil {
		t.Fatal("shell thicker than the compartment radius did not fail")
	}
}

func TestMissingPoolPrototype(t *testing.T) {
	doc := caPoolDoc()
	doc.Cells[0].Biophys.Intracellular.Species[0].ConcModel = "nope"
	rd := testReader()
	err := rd.Read(doc)
	if err == nil {
		t.Fatal("species with an unknown concentration model did not fail")
	}
	var mpe *MissingPrototypeError
	if !errors.As(err, &mpe) {
		t.Fatalf("error is %T, want MissingPrototypeError", err)
	}
	if mpe.Kind != "pool" || mpe.ID != "nope" {
		t.Errorf("error reports %s %s, want pool nope", mpe.Kind, mpe.ID)
	}
}

func TestPoolFromInclude(t *testing.T) {
	incRd := testReader()
	incDoc := &Document{ID: "pools_inc", ConcModels: []*ConcModel{
		{ID: "CaPool", Ion: "ca", RestingConc: "1e-4 mM", DecayConstant: "13.333 ms", ShellThickness: "0.1 um"},
	}}
	if err := incRd.Read(incDoc); err != nil {
		t.Fatal(err)
	}
	doc := caPoolDoc()
	doc.ConcModels = nil // pool prototype comes from the include
	rd := testReader()
	rd.AddInclude(incRd)
	if err := rd.Read(doc); err != nil {
		t.Fatal(err)
	}
	soma, _ := rd.CompForSeg("pass_cell", 0)
	if soma.ChildByName("ca", 0) == nil {
		t.Errorf("pool defined in an included document was not placed")
	}
}

func TestConcModelName(t *testing.T) {
	rd := testReader()
	doc := &Document{ConcModels: []*ConcModel{
		{ID: "CaPool", Name: "ca_dynamics", RestingConc: "1e-4 mM", DecayConstant: "10 ms", ShellThickness: "0.1 um"},
	}}
	if err := rd.Read(doc); err != nil {
		t.Fatal(err)
	}
	proto := rd.ProtoPools["CaPool"]
	if proto.Name() != "ca_dynamics" {
		t.Errorf("prototype named %q, want the declared name ca_dynamics", proto.Name())
	}
}
