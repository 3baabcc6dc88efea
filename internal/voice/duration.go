package voice

import (
	"bytes"
	"strings"
	"time"

	"github.com/hajimehoshi/go-mp3"
)

// speakingRate approximates conversational TTS output, used only when the
// mp3 payload cannot be decoded.
const speakingRate = 150 // words per minute

// playbackDuration measures how long the synthesized mp3 will take to play,
// so the navigation signal can be held back until the reply finishes. If the
// payload does not decode, it estimates from the spoken text instead.
func playbackDuration(audio []byte, text string) time.Duration {
	if d := mp3Duration(audio); d > 0 {
		return d
	}
	return estimateFromText(text)
}

func mp3Duration(audio []byte) time.Duration {
	dec, err := mp3.NewDecoder(bytes.NewReader(audio))
	if err != nil {
		return 0
	}
	// Length is the decoded byte count of 16-bit stereo samples.
	samples := dec.Length() / 4
	if samples <= 0 || dec.SampleRate() <= 0 {
		return 0
	}
	return time.Duration(samples) * time.Second / time.Duration(dec.SampleRate())
}

func estimateFromText(text string) time.Duration {
	words := len(strings.Fields(text))
	if words == 0 {
		return time.Second
	}
	return time.Duration(words) * time.Minute / speakingRate
}
