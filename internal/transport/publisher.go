// SPDX-License-Identifier: MIT
package transport

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"ffaa/internal/analysis"
	applog "ffaa/internal/log"
)

// Publisher periodically copies the latest bands out of a band source and
// hands them to every transport as a Frame. It runs in a separate goroutine
// managed by Start and Stop, so the audio path never waits on the network.
type Publisher struct {
	source     analysis.BandSource
	transports []Transport
	interval   time.Duration

	ticker   *time.Ticker   // Ticker that triggers publishing.
	doneChan chan struct{}  // Channel used to signal the publisher goroutine to stop.
	stopOnce sync.Once      // Ensures the stop logic runs only once per Start/Stop cycle.
	wg       sync.WaitGroup // Waits for the publisher goroutine to finish during Stop.
	mu       sync.Mutex     // Protects access to ticker and doneChan during Start/Stop.

	lastSeq uint64
	bands   []float32 // Reused for every frame.

	published atomic.Uint64
	failures  atomic.Uint64
}

// NewPublisher creates a Publisher. If the provided interval is invalid
// (<= 0), it defaults to 16ms (~60Hz).
func NewPublisher(interval time.Duration, source analysis.BandSource, transports ...Transport) (*Publisher, error) {
	if source == nil {
		return nil, fmt.Errorf("Publisher: band source cannot be nil")
	}
	if len(transports) == 0 {
		return nil, fmt.Errorf("Publisher: at least one transport is required")
	}

	if interval <= 0 {
		interval = 16 * time.Millisecond
		applog.Warnf("Publisher: Invalid interval provided, defaulting to %s", interval)
	}

	applog.Infof("Publisher: Initializing (Interval: %s, Bands: %d, Transports: %d)", interval, source.Len(), len(transports))

	return &Publisher{
		source:     source,
		transports: transports,
		interval:   interval,
		bands:      make([]float32, source.Len()),
	}, nil
}

// Start begins the periodic publishing process.
// It is safe to call Start multiple times; subsequent calls are no-ops if already started.
func (p *Publisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("Publisher: Start called but already running.")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	// Capture local variables for the goroutine to avoid data races on p.ticker/p.doneChan
	ticker := p.ticker
	doneChan := p.doneChan

	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Debugf("Publisher: Goroutine started (Interval: %s)", p.interval)
		for {
			select {
			case now := <-ticker.C:
				p.publish(now)
			case <-doneChan:
				return
			}
		}
	}()
}

// Stop gracefully signals the publisher goroutine to terminate and waits for it to exit.
// It is safe to call Stop multiple times; subsequent calls are no-ops.
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		applog.Debugf("Publisher: Stop called but not running.")
		return nil
	}

	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})

	p.mu.Unlock()

	p.wg.Wait()
	applog.Infof("Publisher: Stopped after %d frames (%d send failures)", p.published.Load(), p.failures.Load())
	return nil
}

// publish sends the latest bands if they changed since the last tick. It
// reports whether a frame went out.
func (p *Publisher) publish(now time.Time) bool {
	seq, err := p.source.BandsInto(p.bands)
	if err != nil {
		applog.Errorf("Publisher: Error getting bands: %v", err)
		return false
	}
	if seq == 0 || seq == p.lastSeq {
		return false
	}
	p.lastSeq = seq

	frame := Frame{
		Sequence:   seq,
		Timestamp:  now,
		SampleRate: p.source.SampleRate(),
		Bands:      p.bands,
	}
	for _, t := range p.transports {
		if err := t.Send(frame); err != nil {
			p.failures.Add(1)
			applog.Debugf("Publisher: Send of frame %d failed: %v", seq, err)
		}
	}
	p.published.Add(1)
	return true
}

// Stats returns the number of frames published and failed sends.
func (p *Publisher) Stats() (published, failures uint64) {
	return p.published.Load(), p.failures.Load()
}

// Close stops the publisher and closes every transport.
func (p *Publisher) Close() error {
	err := p.Stop()
	for _, t := range p.transports {
		if cerr := t.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Ensure Publisher satisfies the io.Closer interface at compile time.
var _ interface{ Close() error } = (*Publisher)(nil)
