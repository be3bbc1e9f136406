package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"go-rhythm/pattern"
	"go-rhythm/sequencer"
	"go-rhythm/theme"
	"go-rhythm/tui"
)

var patternOpts struct {
	bars  int
	json  bool
	fresh bool
}

var patternControls *controlFlags

var patternCmd = &cobra.Command{
	Use:   "pattern",
	Short: "Print generated bars without playing them",
	Long: `Generate one or more bars from the controls and print them as a
grid, or as JSON. Bars follow the phrase: drift reseeds each phrase
and build ramps toward its end.

Examples:
  go-rhythm pattern --energy 0.8 --genre idm
  go-rhythm pattern --bars 8 --build 1 --drift 0.6
  go-rhythm pattern --seed 0xDEADBEEF --json`,
	RunE: runPattern,
}

var sweepOpts struct {
	steps int
	seeds int
}

var sweepControls *controlFlags

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Show how hit counts respond to energy",
	Long: `Sweep energy from 0 to 1 and print the zone and mean hits per voice
over a range of seeds. Other controls come from the flags.`,
	RunE: runSweep,
}

func init() {
	sweepControls = addControlFlags(sweepCmd)
	patternControls = addControlFlags(patternCmd)
	patternCmd.Flags().IntVar(&patternOpts.bars, "bars", 1, "number of consecutive bars")
	patternCmd.Flags().BoolVar(&patternOpts.json, "json", false, "print JSON")
	patternCmd.Flags().BoolVar(&patternOpts.fresh, "fresh", true, "ignore the saved controls")

	sweepCmd.Flags().IntVar(&sweepOpts.steps, "steps", 11, "energy values between 0 and 1")
	sweepCmd.Flags().IntVar(&sweepOpts.seeds, "seeds", 64, "seeds averaged per energy value")
}

// phraseBar is the generation input the sequencer uses at the start of bar
// n of a run starting at phrase 0
func phraseBar(c sequencer.Controls, n int) pattern.Params {
	p := c.Params
	phrase := uint32(n / c.PhraseBars)
	bar := n % c.PhraseBars
	length := pattern.SnapLength(p.Length)
	p.PhraseSeed = pattern.PhraseSeed(c.Seed, phrase)
	p.PhraseProgress = sequencer.GenerationProgress(0, bar, c.PhraseBars, length)
	if p.Build > 0 {
		p.FillSteps = sequencer.FillSteps(bar, c.PhraseBars, length)
	}
	return p
}

func runPattern(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := patternControls.controls(cmd, cfg, patternOpts.fresh)
	if err != nil {
		return err
	}
	t := pattern.DefaultTuning()

	bars := patternOpts.bars
	if bars < 1 {
		bars = 1
	}
	results := make([]pattern.Result, bars)
	for i := range results {
		results[i] = pattern.Generate(phraseBar(c, i), t)
	}

	if patternOpts.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if bars == 1 {
			return enc.Encode(results[0])
		}
		return enc.Encode(results)
	}

	th := theme.New(theme.Default())
	head := lipgloss.NewStyle().Foreground(th.Accent())
	for i := range results {
		r := &results[i]
		fmt.Println(head.Render(fmt.Sprintf("bar %d  zone %s  phase %s  swing %.2f  hits %d/%d/%d",
			i+1, r.Zone, r.Phase, r.Swing, r.Masks[0].Count(), r.Masks[1].Count(), r.Masks[2].Count())))
		fmt.Println(tui.Grid(th, r, -1))
		fmt.Println()
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	c := sequencer.DefaultControls()
	if err := sweepControls.apply(cmd, &c); err != nil {
		return err
	}
	steps := max(sweepOpts.steps, 2)
	seeds := max(sweepOpts.seeds, 1)
	t := pattern.DefaultTuning()

	th := theme.New(theme.Default())
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(th.Muted())).
		Headers("energy", "zone", "anchor", "shimmer", "aux", "min spacing").
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Foreground(th.Accent())
			}
			return s
		})

	for i := 0; i < steps; i++ {
		p := c.Params
		p.Energy = float64(i) / float64(steps-1)
		var sum [pattern.NumVoices]int
		var r pattern.Result
		for s := 0; s < seeds; s++ {
			p.Seed = pattern.Hash(c.Seed, uint32(s))
			r = pattern.Generate(p, t)
			for v := range sum {
				sum[v] += r.Masks[v].Count()
			}
		}
		mean := func(v int) string {
			return strconv.FormatFloat(float64(sum[v])/float64(seeds), 'f', 2, 64)
		}
		tbl.Row(strconv.FormatFloat(p.Energy, 'f', 2, 64), r.Zone.String(), mean(0), mean(1), mean(2),
			strconv.Itoa(r.Budget.MinSpacing))
	}
	fmt.Println(tbl.String())
	return nil
}
