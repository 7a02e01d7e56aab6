package event

// Type represents the type of input event
type Type int

const (
	Press   Type = iota // Key pressed down (debounced for runner controls)
	Release             // Key released (debounced for runner controls)
	Hold                // Continuous while pressed, never debounced
)
