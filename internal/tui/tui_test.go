package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"ffaa/internal/analysis"
	"ffaa/internal/audio"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSpectrumRefreshScalesToPeak(t *testing.T) {
	snap := analysis.NewSnapshot(3)
	m := NewSpectrumModel(snap, 10*time.Millisecond, "test")

	snap.Store([]float32{1, 4, 2}, 48000)
	next, cmd := m.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	m = next.(SpectrumModel)

	if m.seq != 1 || m.frames != 1 {
		t.Fatalf("seq = %d, frames = %d", m.seq, m.frames)
	}
	want := []float64{0.25, 1, 0.5}
	for i, w := range want {
		if m.levels[i] != w {
			t.Errorf("levels[%d] = %f, want %f", i, m.levels[i], w)
		}
	}

	// Same sequence: nothing changes.
	next, _ = m.Update(tickMsg(time.Now()))
	if next.(SpectrumModel).frames != 1 {
		t.Error("unchanged sequence should not count as a new frame")
	}
}

func TestSpectrumPauseAndQuit(t *testing.T) {
	snap := analysis.NewSnapshot(2)
	m := NewSpectrumModel(snap, time.Millisecond, "test")

	next, _ := m.Update(keyMsg("p"))
	m = next.(SpectrumModel)
	if !m.paused {
		t.Fatal("p should pause")
	}

	snap.Store([]float32{1, 1}, 48000)
	next, _ = m.Update(tickMsg(time.Now()))
	if next.(SpectrumModel).seq != 0 {
		t.Error("paused view should not refresh")
	}
	if !strings.Contains(m.View(), "paused") {
		t.Error("view should show the paused state")
	}

	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestRenderBars(t *testing.T) {
	out := renderBars([]float64{0, 0.5, 1}, 2, 1)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d rows, want 2", len(lines))
	}
	if !strings.Contains(lines[0], " █") {
		t.Errorf("top row %q should hold only the full bar", lines[0])
	}
	if !strings.Contains(lines[1], " ██") {
		t.Errorf("bottom row %q should hold the half and full bars", lines[1])
	}
}

var testDevices = []audio.Device{
	{ID: 0, Name: "Speakers", MaxOutputChannels: 2, DefaultSampleRate: 48000},
	{ID: 1, Name: "Mic", MaxInputChannels: 1, DefaultSampleRate: 44100},
	{ID: 2, Name: "Interface", MaxInputChannels: 2, DefaultSampleRate: 96000},
}

func initPicker(t *testing.T, load func() ([]audio.Device, error)) DeviceListModel {
	t.Helper()
	m := NewDeviceListModel(load)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	next, _ = next.Update(m.Init()())
	return next.(DeviceListModel)
}

func TestDevicePickerSelection(t *testing.T) {
	m := initPicker(t, func() ([]audio.Device, error) { return testDevices, nil })
	if len(m.devices) != 2 {
		t.Fatalf("picker lists %d devices, want 2 input devices", len(m.devices))
	}

	var next tea.Model = m
	for _, k := range []string{"down", "enter", "up"} {
		next, _ = next.Update(keyMsg(k))
	}
	m = next.(DeviceListModel)
	if m.activeScreen != ConfigScreen {
		t.Fatal("enter should open the configuration screen")
	}
	if !strings.Contains(m.View(), "Interface") {
		t.Error("configuration screen should name the device")
	}

	next, cmd := m.Update(keyMsg("enter"))
	sel, ok := next.(DeviceListModel).Selection()
	if !ok {
		t.Fatal("expected a selection")
	}
	// Interface defaults to 96000; one step up is 88200.
	if sel.DeviceID != 2 || sel.SampleRate != 88200 {
		t.Errorf("selection = %+v", sel)
	}
	if cmd == nil {
		t.Error("confirming should quit the picker")
	}
}

func TestDevicePickerQuitWithoutSelection(t *testing.T) {
	m := initPicker(t, func() ([]audio.Device, error) { return testDevices, nil })
	next, _ := m.Update(keyMsg("q"))
	if _, ok := next.(DeviceListModel).Selection(); ok {
		t.Error("quitting should not produce a selection")
	}
}

func TestDevicePickerLoadError(t *testing.T) {
	m := initPicker(t, func() ([]audio.Device, error) { return nil, errors.New("no portaudio") })
	if !strings.Contains(m.View(), "no portaudio") {
		t.Errorf("view should show the error, got %q", m.View())
	}
}

func TestNearestRate(t *testing.T) {
	if SampleRates[nearestRate(44100)] != 44100 || SampleRates[nearestRate(50000)] != 48000 {
		t.Error("nearestRate picked the wrong rate")
	}
}
