package sequencer

// PhrasePosition is where the playhead sits in the current phrase
type PhrasePosition struct {
	Step   int    `json:"step"`   // step within the bar
	Bar    int    `json:"bar"`    // bar within the phrase
	Phrase uint32 `json:"phrase"` // phrases completed since start

	StepInPhrase int     `json:"stepInPhrase"`
	PhraseSteps  int     `json:"phraseSteps"`
	Progress     float64 `json:"progress"` // 0 at phrase start, approaching 1 at its end

	BarBoundary    bool `json:"barBoundary"`
	PhraseBoundary bool `json:"phraseBoundary"`
	InBuildZone    bool `json:"inBuildZone"`
	InFillZone     bool `json:"inFillZone"`
}

// BeatSteps is how many steps make a beat. Parameter changes and phase
// changes take effect on beat boundaries.
const BeatSteps = 4

// FillZoneSteps is the length of the fill at the end of a phrase
func FillZoneSteps(bars int) int {
	return clampInt(bars*4, 4, 32)
}

// BuildZoneSteps is the length of the build-up at the end of a phrase
func BuildZoneSteps(bars int) int {
	return clampInt(bars*8, 8, 64)
}

// positionAt computes the position for step of bar in a phrase of bars
// bars, each length steps long
func positionAt(step, bar, bars, length int, phrase uint32) PhrasePosition {
	total := bars * length
	in := bar*length + step
	left := total - in
	p := PhrasePosition{
		Step:           step,
		Bar:            bar,
		Phrase:         phrase,
		StepInPhrase:   in,
		PhraseSteps:    total,
		BarBoundary:    step == 0,
		PhraseBoundary: in == 0,
		InBuildZone:    left <= BuildZoneSteps(bars),
		InFillZone:     left <= FillZoneSteps(bars),
	}
	if total > 0 {
		p.Progress = float64(in) / float64(total)
	}
	return p
}

// GenerationProgress is the phrase progress a pattern built at step should
// use: the progress at the last step of the beat holding step, so a beat
// that reaches a phase is played in that phase
func GenerationProgress(step, bar, bars, length int) float64 {
	total := bars * length
	if total <= 0 {
		return 0
	}
	end := min(step-step%BeatSteps+BeatSteps-1, length-1)
	return float64(bar*length+end) / float64(total)
}

// FillSteps is how many steps at the end of bar lie in the phrase's fill
// zone
func FillSteps(bar, bars, length int) int {
	fillStart := bars*length - FillZoneSteps(bars)
	return clampInt((bar+1)*length-fillStart, 0, length)
}
