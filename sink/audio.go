package sink

import "time"

// Blip cadence of the synthesized voice. One blip per ~3 characters, clamped
// so short replies still register and long ones do not drone on.
const (
	blipCharsPerBlip = 3
	blipMin          = 3
	blipMax          = 30
	// BlipInterval is the pause between consecutive voice blips.
	BlipInterval = 80 * time.Millisecond
)

// AudioCue describes the voice feedback for one utterance. The presentation
// layer decides what a blip sounds like; the core only sizes the cue.
type AudioCue struct {
	Blips    int
	Interval time.Duration
}

// Duration returns the total playback time of the cue.
func (c AudioCue) Duration() time.Duration { return time.Duration(c.Blips) * c.Interval }

// CueFor sizes an audio cue proportionally to the utterance length.
func CueFor(text string) AudioCue {
	blips := len(text) / blipCharsPerBlip
	if blips < blipMin {
		blips = blipMin
	} else if blips > blipMax {
		blips = blipMax
	}
	return AudioCue{Blips: blips, Interval: BlipInterval}
}
