package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gopxl/beep"
	"github.com/spf13/cobra"

	"go-rhythm/midi"
	"go-rhythm/render"
	"go-rhythm/server"
)

var renderOpts struct {
	bars   int
	out    string
	rate   int
	volume float64
	fresh  bool
}

var renderControls *controlFlags

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render bars of the click voices to a WAV file",
	Long: `Run the sequencer offline on its internal clock and write the
built-in click voices to a 16-bit stereo WAV file.

Example:
  go-rhythm render --bars 16 --energy 0.8 -o groove.wav`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		c, err := renderControls.controls(cmd, cfg, renderOpts.fresh)
		if err != nil {
			return err
		}
		o := render.Options{
			Controls:   c,
			Bars:       renderOpts.bars,
			SampleRate: beep.SampleRate(renderOpts.rate),
			Volume:     renderOpts.volume,
		}
		if err := render.WriteWAVFile(renderOpts.out, o); err != nil {
			return err
		}
		fmt.Printf("wrote %d bars to %s\n", renderOpts.bars, renderOpts.out)
		return nil
	},
}

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve pattern previews over HTTP",
	Long: `Serve GET /pattern (JSON) and /pattern.txt (grid), generating one bar
from the query parameters.

Example:
  go-rhythm serve --addr :8420
  curl 'localhost:8420/pattern.txt?energy=0.7&genre=tribal'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if !cmd.Flags().Changed("addr") {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			addr = cfg.Server.Addr
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Printf("serving on http://%s\n", addr)
		return server.New(server.Config{Addr: addr}, nil).Run(ctx)
	},
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI ports",
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := midi.ScanPorts(midi.ScanTimeout)
		if err != nil {
			return err
		}
		fmt.Println("inputs:")
		for i, name := range ports.InNames() {
			fmt.Printf("  %d: %s\n", i, name)
		}
		fmt.Println("outputs:")
		for i, name := range ports.OutNames() {
			fmt.Printf("  %d: %s\n", i, name)
		}
		return nil
	},
}

func init() {
	renderControls = addControlFlags(renderCmd)
	f := renderCmd.Flags()
	f.IntVar(&renderOpts.bars, "bars", 8, "bars to render")
	f.StringVarP(&renderOpts.out, "output", "o", "go-rhythm.wav", "output file")
	f.IntVar(&renderOpts.rate, "rate", 44100, "sample rate")
	f.Float64Var(&renderOpts.volume, "volume", 0.8, "master volume 0-1")
	f.BoolVar(&renderOpts.fresh, "fresh", false, "ignore the saved controls")

	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8420", "listen address")
}
