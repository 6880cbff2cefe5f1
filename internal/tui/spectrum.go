package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"ffaa/internal/analysis"
)

// Eighth-block glyphs for the partial top cell of a bar.
var barBlocks = []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

const (
	minBarRows = 4
	chromeRows = 5 // title, blank, blank, status, help
	peakDecay  = 0.995
	minPeak    = 1e-6
)

type keyMap struct {
	Quit  key.Binding
	Pause key.Binding
}

var keys = keyMap{
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Pause: key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p", "pause")),
}

type tickMsg time.Time

// SpectrumModel draws the latest bands from a band source as vertical bars,
// scaled against a slowly decaying peak so quiet input still fills the view.
type SpectrumModel struct {
	source   analysis.BandSource
	interval time.Duration
	title    string

	bands  []float32
	levels []float64 // 0..1 per band after scaling
	peak   float64
	seq    uint64
	frames int
	paused bool

	width, height int
	err           error
}

// NewSpectrumModel creates a model that polls source every interval.
func NewSpectrumModel(source analysis.BandSource, interval time.Duration, title string) SpectrumModel {
	return SpectrumModel{
		source:   source,
		interval: interval,
		title:    title,
		bands:    make([]float32, source.Len()),
		levels:   make([]float64, source.Len()),
		width:    source.Len(),
		height:   minBarRows + chromeRows,
	}
}

func (m SpectrumModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the refresh loop.
func (m SpectrumModel) Init() tea.Cmd {
	return m.tick()
}

func (m SpectrumModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Pause):
			m.paused = !m.paused
		}

	case tickMsg:
		if !m.paused {
			m.refresh()
		}
		return m, m.tick()
	}
	return m, nil
}

// refresh pulls new bands if the source has moved on.
func (m *SpectrumModel) refresh() {
	seq, err := m.source.BandsInto(m.bands)
	if err != nil {
		m.err = err
		return
	}
	if seq == m.seq {
		return
	}
	m.seq = seq
	m.frames++

	m.peak *= peakDecay
	for _, v := range m.bands {
		m.peak = max(m.peak, float64(v))
	}
	scale := max(m.peak, minPeak)
	for i, v := range m.bands {
		m.levels[i] = min(float64(v)/scale, 1)
	}
}

func (m SpectrumModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to exit.", m.err)
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n\n")
	sb.WriteString(renderBars(m.levels, max(m.height-chromeRows, minBarRows), max(m.width/max(len(m.levels), 1), 1)))
	sb.WriteString("\n")

	status := fmt.Sprintf("%d bands • %d Hz • frame %d", len(m.levels), m.source.SampleRate(), m.seq)
	if m.paused {
		status += " • " + highlightStyle.Render("paused")
	}
	sb.WriteString(dimStyle.Render(status))
	sb.WriteString("\n")
	sb.WriteString(infoStyle.Render(fmt.Sprintf("%s: %s • %s: %s",
		keys.Pause.Help().Key, keys.Pause.Help().Desc, keys.Quit.Help().Key, keys.Quit.Help().Desc)))
	return sb.String()
}

// renderBars draws levels (0..1) as rows bars tall and barWidth cells wide,
// top row first.
func renderBars(levels []float64, rows, barWidth int) string {
	var sb strings.Builder
	for row := rows - 1; row >= 0; row-- {
		style := barLowStyle
		switch {
		case row >= rows*3/4:
			style = barHighStyle
		case row >= rows/2:
			style = barMidStyle
		}

		var line strings.Builder
		for _, level := range levels {
			eighths := int(level*float64(rows*8)+0.5) - row*8
			eighths = max(0, min(eighths, 8))
			line.WriteString(strings.Repeat(barBlocks[eighths], barWidth))
		}
		sb.WriteString(style.Render(line.String()))
		if row > 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// RunSpectrum shows the band view until the user quits.
func RunSpectrum(source analysis.BandSource, interval time.Duration, title string) error {
	p := tea.NewProgram(NewSpectrumModel(source, interval, title), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
