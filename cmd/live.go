package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ffaa/internal/analysis"
	"ffaa/internal/audio"
	"ffaa/internal/config"
	applog "ffaa/internal/log"
	"ffaa/internal/transport"
	"ffaa/internal/transport/udp"
	"ffaa/internal/tui"
)

// newTransports opens every transport enabled in cfg.
func newTransports(cfg *config.Config) ([]transport.Transport, error) {
	var out []transport.Transport
	if cfg.Transport.UDPEnabled {
		t, err := udp.NewTransport(cfg.Transport.UDPTargetAddress)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if cfg.Transport.WebSocketEnabled {
		t, err := transport.NewWebSocketTransport(cfg.Transport.WebSocketAddress)
		if err != nil {
			closeAll(out)
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func closeAll(ts []transport.Transport) {
	for _, t := range ts {
		if err := t.Close(); err != nil {
			applog.Warnf("Transport close: %v", err)
		}
	}
}

// runLive is the three-phase live run:
//  1. Startup (cold path): PortAudio, analyzer, engine, transports.
//  2. Hot path: the input callback feeds the analyzer; publishers and the
//     TUI read snapshots on their own goroutines.
//  3. Shutdown: stop publishing, recording and the stream.
func runLive(cmd *cobra.Command, opts *options) error {
	cfg := opts.cfg

	// ==================== STARTUP PHASE (Cold Path) ====================

	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	if opts.pick {
		sel, ok, err := tui.PickDevice()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		cfg.Audio.InputDevice = sel.DeviceID
		cfg.Analysis.SampleRate = sel.SampleRate
	}

	analyzerCfg, err := cfg.AnalyzerConfig()
	if err != nil {
		return err
	}
	analyzer, err := analysis.NewAnalyzer(analyzerCfg)
	if err != nil {
		return err
	}
	snapshot := analysis.NewSnapshot(analyzer.FreqOutLen())

	engine, err := audio.NewEngine(audio.Options{
		DeviceID:   cfg.Audio.InputDevice,
		LowLatency: cfg.Audio.LowLatency,
	}, analyzer, snapshot)
	if err != nil {
		return err
	}

	transports, err := newTransports(cfg)
	if err != nil {
		return err
	}
	transports = append(transports, transport.NewLoggingTransport())
	publisher, err := transport.NewPublisher(cfg.Transport.SendInterval, snapshot, transports...)
	if err != nil {
		closeAll(transports)
		return err
	}
	defer publisher.Close()

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	if err := engine.StartInputStream(); err != nil {
		return err
	}
	defer engine.Close()

	if cfg.Recording.Enabled {
		name := cfg.Recording.OutputFile
		if name == "" {
			name = "recording-" + time.Now().UTC().Format("02-01-2006-150405") + ".wav"
		}
		if err := engine.StartRecording(name); err != nil {
			return err
		}
		defer fmt.Fprintf(cmd.OutOrStdout(), "\nRecording saved to: %s\n", name)
	}

	publisher.Start()

	if cfg.TUI.Enabled {
		logFile, err := os.OpenFile(cfg.TUI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open TUI log file: %w", err)
		}
		applog.SetOutput(logFile)
		defer func() {
			applog.SetOutput(os.Stderr)
			logFile.Close()
		}()

		title := fmt.Sprintf("ffaa • %s", engine.Device().Name)
		return tui.RunSpectrum(snapshot, cfg.TUI.RefreshRate, title)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Capturing from '%s'. Press Ctrl+C to stop.\n", engine.Device().Name)

	// Block until termination signal is received
	<-cmd.Context().Done()

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	callbacks, overflows := engine.Stats()
	applog.Infof("Live: %d callbacks, %d input overflows, %d analyses", callbacks, overflows, analyzer.Analyses())
	return nil
}
