// Package blocks binds the plus/minus mutator to concrete block types.
//
// A Binding carries the per-type configuration (value check, labels, default
// count, placeholder rendering). Attach is the initialization hook; the
// returned Instance exposes the lifecycle hooks a host calls: Plus, Minus,
// SaveExtraState/LoadExtraState (JSON) and MutationToXML/LoadMutationXML.
//
// Saved counts are validated here, at the host edge, before they reach the
// mutator core.
package blocks
