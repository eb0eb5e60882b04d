// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package nml2 is the overall repository for the NeuroML2 model translator:
it takes a parsed NeuroML2 document (cell morphologies, ion channels,
concentration pools, networks) and builds the corresponding prototype
object tree for a compartmental simulation engine.

This top-level of the repository has no functional code -- everything is
organized into the following sub-packages:

* nml2: the translator core -- the NML2 schema object model and the Reader
that builds compartmental morphology, imports biophysics, constructs
channel / pool prototypes, and instantiates populations and inputs.

* sim: the engine-side object tree that the Reader populates -- named,
path-addressed elements (compartments, HH channels, concentration pools,
pulse generators) supporting terminal connection and deep prototype copy.

* hhfit: the parametric Hodgkin-Huxley rate-function forms (exponential,
sigmoid, exponential-linear) used to fill channel gate tables.

* units: conversion of NeuroML2 quantity strings to engine (SI) units.
*/
package nml2
