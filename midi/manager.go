package midi

import (
	"context"
	"errors"
	"sync"
	"time"

	"go-rhythm/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// ScanTimeout bounds port enumeration, which can hang on some drivers
const ScanTimeout = 3 * time.Second

// ErrScanTimeout is returned when port enumeration did not finish in time
var ErrScanTimeout = errors.New("midi port scan timed out")

// Ports is one enumeration of the system's MIDI ports
type Ports struct {
	In  []drivers.In
	Out []drivers.Out
}

// ScanPorts enumerates ports, giving up after timeout
func ScanPorts(timeout time.Duration) (Ports, error) {
	ch := make(chan Ports, 1)
	go func() {
		ch <- Ports{In: gomidi.GetInPorts(), Out: gomidi.GetOutPorts()}
	}()
	select {
	case p := <-ch:
		return p, nil
	case <-time.After(timeout):
		return Ports{}, ErrScanTimeout
	}
}

// InNames lists input port names
func (p Ports) InNames() []string {
	names := make([]string, len(p.In))
	for i, port := range p.In {
		names[i] = port.String()
	}
	return names
}

// OutNames lists output port names
func (p Ports) OutNames() []string {
	names := make([]string, len(p.Out))
	for i, port := range p.Out {
		names[i] = port.String()
	}
	return names
}

// FindOut returns the first output port matching name
func (p Ports) FindOut(name string) (drivers.Out, bool) {
	for _, port := range p.Out {
		if matchPort(port.String(), name) {
			return port, true
		}
	}
	return nil, false
}

// DeviceEvent is emitted when inputs connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceManager opens inputs whose names match the configured clock and
// control ports, and follows them as they come and go
type DeviceManager struct {
	want        []string
	mapping     Mapping
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration
}

// NewDeviceManager watches for input ports containing any of want
func NewDeviceManager(mapping Mapping, want ...string) *DeviceManager {
	var names []string
	for _, w := range want {
		if w != "" {
			names = append(names, w)
		}
	}
	return &DeviceManager{
		want:        names,
		mapping:     mapping,
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of open inputs
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	out := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		out[k] = v
	}
	return out
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) wanted(name string) bool {
	for _, w := range dm.want {
		if matchPort(name, w) {
			return true
		}
	}
	return false
}

func (dm *DeviceManager) scan() {
	if len(dm.want) == 0 {
		return
	}
	ports, err := ScanPorts(ScanTimeout)
	if err != nil {
		debug.Log("midi", "scan skipped: %v", err)
		return
	}

	seen := make(map[string]bool)
	for _, inPort := range ports.In {
		id := inPort.String()
		if !dm.wanted(id) {
			continue
		}
		seen[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		in, err := NewInput(id, inPort, dm.mapping)
		if err != nil {
			debug.Log("midi", "open %s: %v", id, err)
			continue
		}
		dm.mu.Lock()
		dm.controllers[id] = in
		dm.mu.Unlock()
		debug.Log("midi", "connected %s", id)
		dm.events <- DeviceEvent{Type: DeviceConnected, Controller: in, ID: id}
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()
	for id, c := range dm.controllers {
		if seen[id] {
			continue
		}
		c.Close()
		delete(dm.controllers, id)
		debug.Log("midi", "disconnected %s", id)
		dm.events <- DeviceEvent{Type: DeviceDisconnected, ID: id}
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}
