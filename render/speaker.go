package render

import (
	"fmt"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Play starts the sound card pulling s. The speaker buffer sets the latency
// between a trigger and its click. Call the returned function to stop.
func Play(s beep.Streamer, rate beep.SampleRate, volume float64) (stop func(), err error) {
	if err := speaker.Init(rate, rate.N(20*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(withVolume(s, volume))
	return func() {
		speaker.Clear()
		speaker.Close()
	}, nil
}
