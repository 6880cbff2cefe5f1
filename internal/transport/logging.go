package transport

import (
	"sync/atomic"

	applog "ffaa/internal/log"
)

// LoggingTransport implements the Transport interface by logging a summary
// of each frame at debug level.
type LoggingTransport struct {
	frames atomic.Uint64
}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	applog.Infof("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs the frame's sequence and loudest band.
func (lt *LoggingTransport) Send(f Frame) error {
	lt.frames.Add(1)
	if !applog.Enabled(applog.LevelDebug) || len(f.Bands) == 0 {
		return nil
	}
	peak := 0
	for i, v := range f.Bands {
		if v > f.Bands[peak] {
			peak = i
		}
	}
	applog.Debugf("LOG_TRANSPORT: Frame %d @ %d Hz, %d bands, peak band %d = %.3f",
		f.Sequence, f.SampleRate, len(f.Bands), peak, f.Bands[peak])
	return nil
}

// Frames returns how many frames have been sent.
func (lt *LoggingTransport) Frames() uint64 {
	return lt.frames.Load()
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	applog.Debugf("LOG_TRANSPORT: Close called after %d frames.", lt.frames.Load())
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
