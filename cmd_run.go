package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gopxl/beep"
	"github.com/spf13/cobra"

	"go-rhythm/debug"
	"go-rhythm/midi"
	"go-rhythm/render"
	"go-rhythm/sequencer"
	"go-rhythm/server"
	"go-rhythm/theme"
	"go-rhythm/tui"
)

var runOpts struct {
	out, clockIn, controlIn string
	kit                     string
	channel                 int
	audio                   bool
	http                    string
	fresh, noSave           bool
}

var runControls *controlFlags

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play live with the terminal monitor",
	Long: `Run the sequencer in real time. Triggers go to a MIDI output and/or
the built-in click voices; a MIDI input can supply clock, start/stop
and knob control. Controls are restored from and saved to the config.

Examples:
  go-rhythm run --out "IAC" --clock-in "IAC"
  go-rhythm run --out "RD-8" --kit rd8
  go-rhythm run --audio --energy 0.7 --genre tribal
  go-rhythm run --audio --http 127.0.0.1:8420`,
	RunE: runRun,
}

func init() {
	runControls = addControlFlags(runCmd)
	f := runCmd.Flags()
	f.StringVar(&runOpts.out, "out", "", "MIDI output port (substring match)")
	f.StringVar(&runOpts.clockIn, "clock-in", "", "MIDI input port for clock and transport")
	f.StringVar(&runOpts.controlIn, "control-in", "", "MIDI input port for knobs and pads")
	f.IntVar(&runOpts.channel, "channel", 0, "MIDI channel 1-16")
	f.StringVar(&runOpts.kit, "kit", "", "note layout: "+strings.Join(midi.KitNames(), ", "))
	f.BoolVar(&runOpts.audio, "audio", false, "play built-in click voices")
	f.StringVar(&runOpts.http, "http", "", "serve the live snapshot on this address")
	f.BoolVar(&runOpts.fresh, "fresh", false, "start from default controls instead of the saved ones")
	f.BoolVar(&runOpts.noSave, "no-save", false, "do not save controls on quit")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}
	ctl, err := runControls.controls(cmd, cfg, runOpts.fresh)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("out") {
		cfg.MIDI.OutPort = runOpts.out
	}
	if cmd.Flags().Changed("clock-in") {
		cfg.MIDI.ClockInPort = runOpts.clockIn
	}
	if cmd.Flags().Changed("control-in") {
		cfg.MIDI.ControlInPort = runOpts.controlIn
	}
	if cmd.Flags().Changed("channel") {
		cfg.MIDI.Channel = runOpts.channel
	}
	if cmd.Flags().Changed("kit") {
		cfg.MIDI.Kit = runOpts.kit
	}
	notes, err := cfg.MIDI.VoiceNotes()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("audio") {
		cfg.Audio.Enabled = runOpts.audio
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := sequencer.NewManager(float64(cfg.Audio.SampleRate), cfg.Audio.BlockSize, nil, ctl)
	defer manager.Close()

	if cfg.MIDI.OutPort != "" {
		out, err := midi.OpenOutput(cfg.MIDI.OutPort, cfg.MIDI.Channel, notes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "midi out: %v\n", err)
		} else {
			debug.Log("main", "midi out %s ch %d", out.Name(), cfg.MIDI.Channel)
			manager.SetOutput(out)
			defer out.AllOff()
		}
	}
	manager.StartRuntime()

	if cfg.Audio.Enabled {
		rate := beep.SampleRate(cfg.Audio.SampleRate)
		stop, err := render.Play(render.NewStreamer(manager, rate, cfg.Audio.BlockSize), rate, cfg.Audio.Volume)
		if err != nil {
			return err
		}
		defer stop()
	} else {
		go manager.Run(ctx)
	}

	var deviceMgr *midi.DeviceManager
	if cfg.MIDI.ClockInPort != "" || cfg.MIDI.ControlInPort != "" {
		deviceMgr = midi.NewDeviceManager(midi.DefaultMapping(), cfg.MIDI.ClockInPort, cfg.MIDI.ControlInPort)
		go deviceMgr.Run(ctx)
	}

	if runOpts.http != "" {
		srv := server.New(server.Config{Addr: runOpts.http, Quiet: true}, manager)
		go func() {
			if err := srv.Run(ctx); err != nil {
				debug.Log("http", "%v", err)
			}
		}()
	}

	m := tui.NewModel(manager, deviceMgr, theme.New(theme.Default()))
	if !runOpts.noSave {
		m.OnQuit = func(c sequencer.Controls) {
			cfg.Apply(c)
			if err := cfg.SaveTo(path); err != nil {
				debug.Log("config", "save: %v", err)
			}
		}
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
