package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"go-rhythm/midi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	arg := ""
	if len(os.Args) > 2 {
		arg = strings.Join(os.Args[2:], " ")
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "clock":
		watchClock(arg)
	case "notes":
		kit := "gm"
		if len(os.Args) > 3 {
			kit = os.Args[3]
			arg = os.Args[2]
		}
		testNotes(arg, kit)
	case "poll":
		pollDevices()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("usage: miditest <command> [args]")
	fmt.Println()
	fmt.Println("  list          - List all MIDI ports")
	fmt.Println("  clock <port>  - Watch clock, start/stop and tempo on an input")
	fmt.Println("  notes <port> [kit] - Play the anchor, shimmer and aux test notes")
	fmt.Println("  poll          - Print ports as they come and go")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	ports, err := midi.ScanPorts(midi.ScanTimeout)
	if err != nil {
		fmt.Println("\nTIMEOUT! The MIDI driver is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return
	}
	for i, name := range ports.InNames() {
		fmt.Printf("  %d: %s\n", i, name)
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, name := range ports.OutNames() {
		fmt.Printf("  %d: %s\n", i, name)
	}
}

func findIn(name string) (*midi.Input, bool) {
	ports, err := midi.ScanPorts(midi.ScanTimeout)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return nil, false
	}
	for _, p := range ports.In {
		if name == "" || strings.Contains(strings.ToLower(p.String()), strings.ToLower(name)) {
			in, err := midi.NewInput(p.String(), p, midi.DefaultMapping())
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return nil, false
			}
			return in, true
		}
	}
	fmt.Printf("No input matching %q\n", name)
	return nil, false
}

// watchClock prints transport messages and the tempo once per beat
func watchClock(name string) {
	in, ok := findIn(name)
	if !ok {
		return
	}
	defer in.Close()
	fmt.Printf("Listening on %s. Ctrl+C to exit.\n", in.ID())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	var ticks int
	var beatStart time.Time
	for {
		select {
		case <-sig:
			return
		case ev := <-in.ControlEvents():
			fmt.Printf("[%s] control %+v\n", time.Now().Format("15:04:05"), ev)
		case ev := <-in.ClockEvents():
			now := time.Now()
			if ev.Kind != midi.ClockTick {
				fmt.Printf("[%s] %s\n", now.Format("15:04:05"), ev.Kind)
				ticks = 0
				continue
			}
			if ticks == 0 {
				beatStart = now
			}
			ticks++
			if ticks == 25 {
				bpm := 60 / now.Sub(beatStart).Seconds()
				fmt.Printf("[%s] %.1f bpm\n", now.Format("15:04:05"), bpm)
				ticks = 1
				beatStart = now
			}
		}
	}
}

// testNotes plays each voice's note four times
func testNotes(name, kitName string) {
	kit, ok := midi.FindKit(kitName)
	if !ok {
		fmt.Printf("Unknown kit %q (have %s)\n", kitName, strings.Join(midi.KitNames(), ", "))
		return
	}
	out, err := midi.OpenOutput(name, 10, kit.Notes)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Using output: %s (%s)\n", out.Name(), kit.Name)

	for voice, label := range []string{"anchor", "shimmer", "aux"} {
		fmt.Printf("  %s\n", label)
		for i := 0; i < 4; i++ {
			vel := uint8(127 - i*30)
			if err := out.Send(midi.Trigger{Voice: voice, Velocity: vel, On: true}); err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			time.Sleep(50 * time.Millisecond)
			out.Send(midi.Trigger{Voice: voice})
			time.Sleep(200 * time.Millisecond)
		}
	}
	if err := out.AllOff(); err != nil {
		fmt.Printf("Error: %v\n", err)
	}
	fmt.Println("done")
}

// pollDevices prints ports as they appear and disappear
func pollDevices() {
	fmt.Println("Watching ports, rescanning every 2s. Ctrl+C to exit.")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	seen := map[string]bool{}
	for {
		ports, err := midi.ScanPorts(midi.ScanTimeout)
		if err != nil {
			fmt.Printf("[%s] %v\n", time.Now().Format("15:04:05"), err)
		} else {
			now := map[string]bool{}
			for _, n := range ports.InNames() {
				now["in  "+n] = true
			}
			for _, n := range ports.OutNames() {
				now["out "+n] = true
			}
			diffPorts(seen, now)
			seen = now
		}

		select {
		case <-sig:
			return
		case <-ticker.C:
		}
	}
}

func diffPorts(before, after map[string]bool) {
	ts := time.Now().Format("15:04:05")
	for n := range after {
		if !before[n] {
			fmt.Printf("[%s] + %s\n", ts, n)
		}
	}
	for n := range before {
		if !after[n] {
			fmt.Printf("[%s] - %s\n", ts, n)
		}
	}
}
