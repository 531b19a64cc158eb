// Package harness runs YAML conformance scenarios against the block engine.
//
// A scenario places blocks, drives them with plus, minus, load and save
// steps, and checks the shape after each step: item count, row names, the
// top row's fields and whether minus is shown. Assertions then look at the
// whole trace and final state, and "replay" rebuilds every block from the
// stored event log to confirm it reaches the same shapes.
//
// Scenarios run against a fresh in-memory store with a deterministic clock
// and a fixed flow token, so traces are byte-identical across runs and can
// be compared with golden files:
//
//	result, err := harness.RunWithGolden(t, scenario)
//
// Golden files live in testdata/golden and are regenerated with -update.
package harness
