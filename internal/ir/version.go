package ir

// Version constants for the result wire format and engine.
const (
	// WireVersion is the result document schema version.
	WireVersion = "1"

	// EngineVersion is the fprecon engine version.
	EngineVersion = "0.1.0"
)
