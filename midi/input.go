package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Input listens to one port for clock and control messages
type Input struct {
	id       string
	mapping  Mapping
	stopFunc func()

	clockChan   chan ClockEvent
	controlChan chan ControlEvent
}

// NewInput opens inPort. Timing messages are only delivered with
// UseTimeCode, so it is always set.
func NewInput(id string, inPort drivers.In, mapping Mapping) (*Input, error) {
	in := newInput(id, mapping)
	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			in.handle(msg)
		}, gomidi.UseTimeCode())
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		in.stopFunc = stop
	}
	return in, nil
}

func newInput(id string, mapping Mapping) *Input {
	return &Input{
		id:          id,
		mapping:     mapping,
		clockChan:   make(chan ClockEvent, 256),
		controlChan: make(chan ControlEvent, 32),
	}
}

// handle runs on the driver's thread and must not block
func (in *Input) handle(msg gomidi.Message) {
	if ev, ok := DecodeClock(msg); ok {
		select {
		case in.clockChan <- ev:
		default:
		}
		return
	}
	if ev, ok := in.mapping.DecodeControl(msg); ok {
		select {
		case in.controlChan <- ev:
		default:
		}
	}
}

func (in *Input) ID() string {
	return in.id
}

func (in *Input) ClockEvents() <-chan ClockEvent {
	return in.clockChan
}

func (in *Input) ControlEvents() <-chan ControlEvent {
	return in.controlChan
}

func (in *Input) Close() error {
	if in.stopFunc != nil {
		in.stopFunc()
	}
	close(in.clockChan)
	close(in.controlChan)
	return nil
}
