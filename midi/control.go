package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

// Mapping routes CC numbers to named parameters and notes to actions
type Mapping struct {
	CC    map[uint8]string      `json:"cc"`
	Notes map[uint8]ControlKind `json:"notes"`
}

// DefaultMapping puts the eight pattern knobs on CC 70-77 and the pads on
// notes 60-62
func DefaultMapping() Mapping {
	return Mapping{
		CC: map[uint8]string{
			70: "shape",
			71: "energy",
			72: "axisX",
			73: "axisY",
			74: "drift",
			75: "accent",
			76: "build",
			77: "balance",
		},
		Notes: map[uint8]ControlKind{
			60: ControlReset,
			61: ControlReseed,
			62: ControlTap,
		},
	}
}

// DecodeControl turns a channel message into a control event. Note-offs
// and unmapped messages are ignored.
func (m *Mapping) DecodeControl(msg gomidi.Message) (ControlEvent, bool) {
	var channel, a, b uint8
	switch {
	case msg.GetControlChange(&channel, &a, &b):
		name, ok := m.CC[a]
		if !ok {
			return ControlEvent{}, false
		}
		return ControlEvent{Kind: ControlParam, Param: name, Value: float64(b) / 127}, true
	case msg.GetNoteOn(&channel, &a, &b) && b > 0:
		kind, ok := m.Notes[a]
		if !ok || kind == ControlParam {
			return ControlEvent{}, false
		}
		return ControlEvent{Kind: kind}, true
	}
	return ControlEvent{}, false
}
