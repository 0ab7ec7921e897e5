// Package assets synthesizes the game's sound cues.
package assets

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/milk9111/chromashapes/prefabs"
)

const SampleRate = 44100

// fade keeps the tone from clicking at both ends.
const fadeSeconds = 0.01

var (
	contextOnce  sync.Once
	audioContext *audio.Context
)

func sharedContext() *audio.Context {
	contextOnce.Do(func() {
		if c := audio.CurrentContext(); c != nil {
			audioContext = c
			return
		}
		audioContext = audio.NewContext(SampleRate)
	})
	return audioContext
}

// TonePCM renders spec as 16-bit little-endian stereo PCM with its
// frequency multiplied by pitch.
func TonePCM(spec prefabs.AudioSpec, pitch float64, sampleRate int) []byte {
	if spec.Seconds <= 0 || spec.Frequency <= 0 || sampleRate <= 0 {
		return nil
	}
	if pitch <= 0 {
		pitch = 1
	}
	volume := math.Max(0, math.Min(1, spec.Volume))
	freq := spec.Frequency * pitch
	n := int(spec.Seconds * float64(sampleRate))
	fade := int(fadeSeconds * float64(sampleRate))

	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		env := 1.0
		if fade > 0 {
			if i < fade {
				env = float64(i) / float64(fade)
			} else if n-i < fade {
				env = float64(n-i) / float64(fade)
			}
		}
		// linear decay over the whole cue
		env *= 1 - float64(i)/float64(n)
		v := math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)) * volume * env
		s := int16(v * math.MaxInt16)
		binary.LittleEndian.PutUint16(out[i*4:], uint16(s))
		binary.LittleEndian.PutUint16(out[i*4+2:], uint16(s))
	}
	return out
}

// TonePlayer plays generated cues on the shared audio context.
type TonePlayer struct {
	mu     sync.Mutex
	active []*audio.Player
}

func NewTonePlayer() *TonePlayer {
	return &TonePlayer{}
}

func (p *TonePlayer) PlayCue(spec prefabs.AudioSpec, pitch float64) {
	pcm := TonePCM(spec, pitch, SampleRate)
	if len(pcm) == 0 {
		return
	}
	player := sharedContext().NewPlayerFromBytes(pcm)
	player.Play()

	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.active[:0]
	for _, a := range p.active {
		if a.IsPlaying() {
			kept = append(kept, a)
			continue
		}
		_ = a.Close()
	}
	p.active = append(kept, player)
}
