package prefabs

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadShapeTuningEmbedded(t *testing.T) {
	spec, err := LoadShapeTuning()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if spec.ExpandSeconds != 1.5 || spec.ShrinkSeconds != 0.5 || spec.MaxScale != 50 {
		t.Fatalf("unexpected timings %+v", spec)
	}
	if _, ok := spec.Sound("expand"); !ok {
		t.Fatalf("expected an expand cue")
	}
	if _, ok := spec.Sound("missing"); ok {
		t.Fatalf("unexpected cue")
	}
	if got := color.NRGBAModel.Convert(spec.Border()).(color.NRGBA); got != (color.NRGBA{R: 0x3a, G: 0x3a, B: 0x3a, A: 0xff}) {
		t.Fatalf("unexpected border color %+v", got)
	}
}

func TestParseShapeTuning(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
		check   func(t *testing.T, s ShapeTuning)
	}{
		{
			name: "partial_keeps_defaults",
			yaml: "max_scale: 20\n",
			check: func(t *testing.T, s ShapeTuning) {
				if s.MaxScale != 20 || s.ExpandSeconds != 1.5 || s.BaseSize != 64 {
					t.Fatalf("unexpected tuning %+v", s)
				}
			},
		},
		{
			name: "border_with_alpha",
			yaml: "border_color: \"#11223380\"\n",
			check: func(t *testing.T, s ShapeTuning) {
				if got := color.NRGBAModel.Convert(s.Border()).(color.NRGBA); got != (color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x80}) {
					t.Fatalf("unexpected border color %+v", got)
				}
			},
		},
		{name: "zero_expand", yaml: "expand_seconds: 0\n", wantErr: ErrInvalidTuning},
		{name: "border_above_one", yaml: "border_percent: 1.5\n", wantErr: ErrInvalidTuning},
		{name: "tiny_max_scale", yaml: "max_scale: 1\n", wantErr: ErrInvalidTuning},
		{
			name: "nil_border_defaults_to_gray",
			yaml: "drag_speed: 3\n",
			check: func(t *testing.T, s ShapeTuning) {
				if s.Border() == nil || s.DragSpeed != 3 {
					t.Fatalf("unexpected tuning %+v", s)
				}
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := ParseShapeTuning([]byte(tc.yaml))
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				if d := DefaultShapeTuning(); s.ExpandSeconds != d.ExpandSeconds || s.MaxScale != d.MaxScale || s.BorderPercent != d.BorderPercent {
					t.Fatalf("invalid tuning should fall back to defaults")
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			tc.check(t, s)
		})
	}
}

func TestParseShapeTuningBadColor(t *testing.T) {
	if _, err := ParseShapeTuning([]byte("border_color: \"#12\"\n")); err == nil {
		t.Fatalf("expected error for short color")
	}
}

func TestWatcherReportsTuningAndLevels(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}
	defer w.Close()

	files := map[string][]byte{
		"notes.txt":     []byte("ignored"),
		"progress.json": []byte("{}"),
		ShapeTuningFile: []byte("max_scale: 10\n"),
		"level_09.json": []byte("{}"),
	}
	for _, name := range []string{"notes.txt", "progress.json", ShapeTuningFile, "level_09.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), files[name], 0o644); err != nil {
			t.Fatal(err)
		}
	}

	seen := make(map[string]bool)
	deadline := time.After(5 * time.Second)
	for !(seen[ShapeTuningFile] && seen["level_09.json"]) {
		select {
		case name := <-w.Events:
			base := filepath.Base(name)
			if base == "notes.txt" || base == "progress.json" {
				t.Fatalf("unexpected event for %s", base)
			}
			seen[base] = true
		case err := <-w.Errors:
			t.Fatalf("watch error: %v", err)
		case <-deadline:
			t.Fatalf("timed out, saw %v", seen)
		}
	}
	if !IsTuningFile(filepath.Join(dir, ShapeTuningFile)) || IsTuningFile(filepath.Join(dir, "level_09.json")) {
		t.Fatalf("IsTuningFile misclassified files")
	}
}

func TestWatcherCloseWithUndrainedEvents(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}

	// more changes than the Events buffer holds, none of them read
	for i := 0; i < 40; i++ {
		name := filepath.Join(dir, fmt.Sprintf("l%02d.json", i))
		if err := os.WriteFile(name, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	time.Sleep(300 * time.Millisecond)

	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-w.Events:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("Events was not closed after Close")
		}
	}
}
