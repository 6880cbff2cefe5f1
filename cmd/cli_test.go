package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"ffaa/internal/transport"
)

// run executes the CLI in an empty working directory so no config file is
// picked up.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	var out bytes.Buffer
	err := Execute(context.Background(), args, &out)
	return out.String(), err
}

func writeTone(t *testing.T, freq float64, sampleRate, n int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, n),
		SourceBitDepth: 16,
	}
	for i := range buf.Data {
		buf.Data[i] = int(math.Round(0.5 * 32767 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))))
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBandsCommand(t *testing.T) {
	out, err := run(t, "bands")
	if err != nil {
		t.Fatalf("bands failed: %v", err)
	}
	if !strings.HasPrefix(out, "70 bands, 4096-point window at 48000 Hz") {
		t.Errorf("unexpected header: %q", strings.SplitN(out, "\n", 2)[0])
	}
	if got := strings.Count(out, "\n"); got != 73 {
		t.Errorf("expected 73 lines (header, blank, columns, 70 bands), got %d", got)
	}
}

func TestBandsCommand_FlagOverrides(t *testing.T) {
	out, err := run(t, "bands", "--bands", "10", "--sample-rate", "44100", "--window", "hamming")
	if err != nil {
		t.Fatalf("bands failed: %v", err)
	}
	if !strings.HasPrefix(out, "10 bands, 4096-point window at 44100 Hz") {
		t.Errorf("unexpected header: %q", strings.SplitN(out, "\n", 2)[0])
	}
	if !strings.Contains(out, "window hamming") {
		t.Errorf("window not reported: %q", strings.SplitN(out, "\n", 2)[0])
	}
}

func TestInvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"samples size", []string{"bands", "--samples-size", "1000"}, "power of 2"},
		{"window", []string{"bands", "--window", "square"}, "window"},
		{"log level", []string{"bands", "--log-level", "loud"}, "log"},
		{"every", []string{"analyze", "--every", "0", "x.wav"}, "--every"},
		{"analyze args", []string{"analyze"}, "arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil {
				t.Fatalf("expected error for %v", tt.args)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	// 468.75 Hz is exactly bin 40 of a 4096-point transform at 48 kHz,
	// the only bin of band 47.
	path := writeTone(t, 468.75, 48000, 48000)

	out, err := run(t, "analyze", "--json", "--every", "10", path)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	// 375 blocks, the first analysis after block 32: 344 analyses.
	if len(lines) != 35 {
		t.Fatalf("expected 35 lines, got %d", len(lines))
	}
	for i, line := range lines {
		var msg transport.FrequencyMessage
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
		if msg.Type != transport.MessageTypeFrequencies {
			t.Errorf("line %d: type %q", i, msg.Type)
		}
		if len(msg.Freqs) != 70 {
			t.Fatalf("line %d: %d freqs", i, len(msg.Freqs))
		}
		peak := 0
		for j, v := range msg.Freqs {
			if v > msg.Freqs[peak] {
				peak = j
			}
		}
		if peak != 47 {
			t.Errorf("line %d: peak band %d, want 47", i, peak)
		}
	}
}

func TestAnalyzeCommand_Text(t *testing.T) {
	path := writeTone(t, 468.75, 48000, 48000)

	out, err := run(t, "analyze", "--every", "100", path)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), out)
	}
	for _, line := range lines {
		if !strings.Contains(line, "peak band 47") {
			t.Errorf("unexpected line %q", line)
		}
	}
}

func TestAnalyzeCommand_MissingFile(t *testing.T) {
	if _, err := run(t, "analyze", "missing.wav"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSparkline(t *testing.T) {
	if got := sparkline([]float32{0, 0.5, 1}); got != "▁▄█" {
		t.Errorf("sparkline = %q", got)
	}
	if got := sparkline([]float32{0, 0}); got != "▁▁" {
		t.Errorf("silent sparkline = %q", got)
	}
}
