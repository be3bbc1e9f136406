package midi

// Controller is a MIDI input feeding the sequencer
type Controller interface {
	ID() string

	// Transport and clock from the port
	ClockEvents() <-chan ClockEvent
	// Knobs and pads from the port
	ControlEvents() <-chan ControlEvent

	Close() error
}
