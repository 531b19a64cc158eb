// Package workspace is an in-memory host for plus/minus blocks.
//
// Block implements mutator.Block with ordered input rows and ordered fields,
// which is enough to observe everything the mutator does: Snapshot captures
// the shape for persistence and golden traces, Render draws it as text, and
// Click activates an affordance the way a pointer event would.
package workspace
