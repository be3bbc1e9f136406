package midi

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// ErrPortNotFound is returned when no port matches the requested name
var ErrPortNotFound = errors.New("midi port not found")

// Output plays voice triggers as notes on one channel
type Output struct {
	name    string
	send    func(gomidi.Message) error
	channel uint8 // 0-based
	notes   [3]uint8

	mu sync.Mutex
}

// OpenOutput opens the first output port whose name contains name
// (case-insensitive). channel is 1-16.
func OpenOutput(name string, channel int, notes [3]uint8) (*Output, error) {
	ports, err := ScanPorts(ScanTimeout)
	if err != nil {
		return nil, err
	}
	port, ok := ports.FindOut(name)
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrPortNotFound)
	}
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	return NewOutput(port.String(), send, channel, notes), nil
}

// NewOutput wraps an already open sender
func NewOutput(name string, send func(gomidi.Message) error, channel int, notes [3]uint8) *Output {
	if channel < 1 || channel > 16 {
		channel = 1
	}
	return &Output{
		name:    name,
		send:    send,
		channel: uint8(channel - 1),
		notes:   notes,
	}
}

// Name is the port name
func (o *Output) Name() string {
	return o.name
}

// Send plays a trigger. Velocity is raised to 1 so a note-on never reads
// as a note-off.
func (o *Output) Send(t Trigger) error {
	if t.Voice < 0 || t.Voice >= len(o.notes) {
		return fmt.Errorf("voice %d out of range", t.Voice)
	}
	note := o.notes[t.Voice]
	o.mu.Lock()
	defer o.mu.Unlock()
	if !t.On {
		return o.send(gomidi.NoteOff(o.channel, note))
	}
	vel := t.Velocity
	if vel == 0 {
		vel = 1
	}
	if vel > 127 {
		vel = 127
	}
	return o.send(gomidi.NoteOn(o.channel, note, vel))
}

// AllOff releases every voice note
func (o *Output) AllOff() error {
	var errs []error
	for v := range o.notes {
		if err := o.Send(Trigger{Voice: v}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// matchPort reports whether port looks like the requested name
func matchPort(port, name string) bool {
	return name != "" && strings.Contains(strings.ToLower(port), strings.ToLower(name))
}
