package midi

// Status bytes
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
	CC      uint8 = 0xB0

	TimingClock uint8 = 0xF8
	Start       uint8 = 0xFA
	Continue    uint8 = 0xFB
	Stop        uint8 = 0xFC
)

// Trigger is one voice opening (On) or closing its gate
type Trigger struct {
	Voice    int
	Velocity uint8
	On       bool
}

// ClockKind is a MIDI real-time transport message
type ClockKind int

const (
	ClockTick ClockKind = iota
	ClockStart
	ClockContinue
	ClockStop
)

func (k ClockKind) String() string {
	switch k {
	case ClockTick:
		return "tick"
	case ClockStart:
		return "start"
	case ClockContinue:
		return "continue"
	case ClockStop:
		return "stop"
	}
	return "unknown"
}

// ClockEvent is emitted for every real-time message on a clock input
type ClockEvent struct {
	Kind ClockKind
}

// ControlKind says what a control event asks for
type ControlKind int

const (
	ControlParam  ControlKind = iota // set Param to Value
	ControlReset                     // reset pulse
	ControlReseed                    // new pattern seed at the next phrase
	ControlTap                       // tap tempo
)

// ControlEvent is a decoded knob or pad move
type ControlEvent struct {
	Kind  ControlKind
	Param string
	Value float64 // 0..1
}

// DecodeClock recognises the single-byte real-time transport messages
func DecodeClock(msg []byte) (ClockEvent, bool) {
	if len(msg) != 1 {
		return ClockEvent{}, false
	}
	switch msg[0] {
	case TimingClock:
		return ClockEvent{Kind: ClockTick}, true
	case Start:
		return ClockEvent{Kind: ClockStart}, true
	case Continue:
		return ClockEvent{Kind: ClockContinue}, true
	case Stop:
		return ClockEvent{Kind: ClockStop}, true
	}
	return ClockEvent{}, false
}
