// Package mutator implements the plus/minus variadic-input state machine.
//
// A Core owns one block's item count and keeps three things consistent:
//
//  1. the count itself,
//  2. the slot rows ADD0..ADD(n-1) on the host block, and
//  3. the MINUS affordance, present exactly when n > 0.
//
// The host block is reached only through the Block and InputRow interfaces.
// Row and field identifiers are the closed sets InputName and FieldName; their
// string forms ("EMPTY", "ADD<i>", "PLUS", "MINUS") exist only at the
// serialization edge.
//
// Slot naming depends on an ordering asymmetry: addSlot increments the count
// after creating the row and removeSlot decrements before removing it, so the
// first row is always ADD0 and removal always takes the highest index.
//
// Block types customize the empty state with a PlaceholderRenderer passed via
// WithPlaceholder. The renderer runs after PLUS has been placed on the EMPTY
// row, so every variant still produces exactly one EMPTY row carrying the
// affordances.
package mutator
