// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package units converts NeuroML2 quantity strings to engine (SI) units.

NeuroML2 expresses physical quantities as strings such as "-65 mV",
"0.1 S_per_cm2" or "1.2 kohm_cm": a number followed by an optional unit
symbol drawn from the schema's fixed unit set.  The simulation engine works
in plain SI (volts, seconds, meters, farads, siemens, ohms), so each symbol
maps to a single multiplicative factor.  Temperatures are the one exception:
the engine's ambient temperature is in celsius, so degC passes through
unscaled and K subtracts 273.15.
*/
package units

import (
	"fmt"
	"strconv"
	"strings"
)

// Factors maps a NeuroML2 unit symbol to the factor converting a value in
// that unit to engine (SI) units.  degC is identity because the engine
// temperature is in celsius; kelvin is handled separately in SI.
var Factors = map[string]float32{
	// potential
	"V":  1,
	"mV": 1e-3,
	"uV": 1e-6,

	// time
	"s":  1,
	"ms": 1e-3,
	"us": 1e-6,

	// rate
	"per_s":  1,
	"Hz":     1,
	"per_ms": 1e3,

	// length
	"m":  1,
	"cm": 1e-2,
	"mm": 1e-3,
	"um": 1e-6,

	// specific capacitance
	"F_per_m2":   1,
	"uF_per_cm2": 1e-2,

	// capacitance
	"F":  1,
	"uF": 1e-6,
	"nF": 1e-9,
	"pF": 1e-12,

	// conductance density
	"S_per_m2":   1,
	"mS_per_cm2": 10,
	"S_per_cm2":  1e4,

	// conductance
	"S":  1,
	"mS": 1e-3,
	"uS": 1e-6,
	"nS": 1e-9,
	"pS": 1e-12,

	// resistivity
	"ohm_m":   1,
	"ohm_cm":  1e-2,
	"kohm_cm": 10,

	// resistance
	"ohm":  1,
	"kohm": 1e3,
	"Mohm": 1e6,

	// current
	"A":  1,
	"mA": 1e-3,
	"uA": 1e-6,
	"nA": 1e-9,
	"pA": 1e-12,

	// concentration (SI = mol per cubic meter, numerically mM)
	"mol_per_m3":  1,
	"mol_per_cm3": 1e6,
	"M":           1e3,
	"mM":          1,
	"uM":          1e-3,

	// temperature: engine is celsius
	"degC": 1,
}

// SI converts a NeuroML2 quantity string such as "-65mV" or "0.1 S_per_cm2"
// to engine (SI) units.  A bare number passes through unscaled, and the
// empty string is 0 (an absent optional quantity).  An unrecognized unit
// symbol is an error.
func SI(q string) (float32, error) {
	s := strings.TrimSpace(q)
	if s == "" {
		return 0, nil
	}
	num, unit := split(s)
	val, err := strconv.ParseFloat(num, 32)
	if err != nil {
		return 0, fmt.Errorf("units.SI: cannot parse quantity %q: %v", q, err)
	}
	if unit == "" {
		return float32(val), nil
	}
	if unit == "K" {
		return float32(val) - 273.15, nil
	}
	fact, ok := Factors[unit]
	if !ok {
		return 0, fmt.Errorf("units.SI: unknown unit %q in quantity %q", unit, q)
	}
	return float32(val) * fact, nil
}

// split separates the leading numeric part of a quantity string from its
// trailing unit symbol.  Exponent markers (e/E followed by a sign or digit)
// belong to the number; everything after the first non-numeric character is
// the unit.
func split(s string) (num, unit string) {
	i := 0
	for i < len(s) {
		c := s[i]
		if (c >= '0' && c <= '9') || c == '.' || c == '+' || c == '-' {
			i++
			continue
		}
		if (c == 'e' || c == 'E') && i+1 < len(s) {
			nx := s[i+1]
			if nx == '+' || nx == '-' || (nx >= '0' && nx <= '9') {
				i += 2
				continue
			}
		}
		break
	}
	return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i:])
}
