package assets

import (
	"encoding/binary"
	"testing"

	"github.com/milk9111/chromashapes/prefabs"
)

func TestTonePCM(t *testing.T) {
	spec := prefabs.AudioSpec{Name: "expand", Frequency: 440, Seconds: 0.5, Volume: 0.5}

	tests := []struct {
		name  string
		spec  prefabs.AudioSpec
		pitch float64
		want  int
	}{
		{name: "half second", spec: spec, pitch: 1, want: 22050 * 4},
		{name: "pitch keeps length", spec: spec, pitch: 1.5, want: 22050 * 4},
		{name: "no duration", spec: prefabs.AudioSpec{Frequency: 440}, pitch: 1, want: 0},
		{name: "no frequency", spec: prefabs.AudioSpec{Seconds: 1}, pitch: 1, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TonePCM(tt.spec, tt.pitch, SampleRate)
			if len(got) != tt.want {
				t.Fatalf("expected %d bytes, got %d", tt.want, len(got))
			}
		})
	}
}

func TestTonePCMStartsSilentAndStaysInRange(t *testing.T) {
	spec := prefabs.AudioSpec{Frequency: 440, Seconds: 0.1, Volume: 0.5}
	pcm := TonePCM(spec, 1, SampleRate)
	if first := int16(binary.LittleEndian.Uint16(pcm[0:])); first != 0 {
		t.Fatalf("expected a silent first sample, got %d", first)
	}
	limit := int16(spec.Volume*32767) + 1
	for i := 0; i+4 <= len(pcm); i += 4 {
		l := int16(binary.LittleEndian.Uint16(pcm[i:]))
		r := int16(binary.LittleEndian.Uint16(pcm[i+2:]))
		if l != r {
			t.Fatalf("channels differ at sample %d", i/4)
		}
		if l > limit || l < -limit {
			t.Fatalf("sample %d out of range: %d", i/4, l)
		}
	}
}
