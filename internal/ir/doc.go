// Package ir provides the shared data types for plusminus.
//
// This package contains type definitions and codecs only. All other internal
// packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float types anywhere - counts are ints
//   - Persisted counts are validated at the edge (ParseMutationXML,
//     ParseMutationJSON); the mutator core assumes non-negative input
//   - All JSON tags use snake_case
//   - Logical clocks (seq) only, never wall-clock timestamps
package ir
