package ir

// Version constants for persisted formats.
const (
	// SchemaVersion is the snapshot/event schema version.
	SchemaVersion = "1"

	// EngineVersion is the plusminus engine version.
	EngineVersion = "0.1.0"
)
