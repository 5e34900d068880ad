/*
sweeper.go - Background auto-verification sweeper

PURPOSE:
  Periodically re-runs the auto-approval sweep over pending claims, so
  claims submitted before a threshold change (or left pending by a
  transient failure) get picked up without an operator calling the
  auto-verify endpoint.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Delegates the whole sweep to Engine.AutoVerifyAll, which is
    idempotent: a second pass with nothing new approves nothing

USAGE:
  sweeper := NewAutoVerifySweeper(engine, log)
  sweeper.Start()
  // ... later
  sweeper.Stop()

SEE ALSO:
  - handlers.go: AutoVerify endpoint (manual sweep)
  - claims/lifecycle.go: AutoVerifyAll
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/warp/claims-engine/claims"
)

// AutoVerifySweeper re-applies auto-approval on a timer.
type AutoVerifySweeper struct {
	Engine        *claims.Engine
	Log           *logrus.Logger
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewAutoVerifySweeper creates a sweeper with a one-hour interval.
func NewAutoVerifySweeper(engine *claims.Engine, log *logrus.Logger) *AutoVerifySweeper {
	return &AutoVerifySweeper{
		Engine:        engine,
		Log:           log,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the sweeper.
func (s *AutoVerifySweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.Log.Info("sweeper disabled, not starting")
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)

	go s.run()

	s.Log.WithField("interval", s.CheckInterval.String()).Info("sweeper started")
}

// Stop stops the sweeper and waits for an in-flight sweep to finish.
func (s *AutoVerifySweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.Log.Info("sweeper stopped")
	}
}

func (s *AutoVerifySweeper) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.sweep()

	for {
		select {
		case <-s.ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *AutoVerifySweeper) sweep() {
	approved, err := s.Engine.AutoVerifyAll(context.Background())
	if err != nil {
		s.Log.WithError(err).Error("sweep failed")
		return
	}
	if approved > 0 {
		s.Log.WithField("approved", approved).Info("sweep approved pending claims")
	}
}

// RunNow triggers an immediate sweep (for testing/admin).
func (s *AutoVerifySweeper) RunNow() {
	s.sweep()
}
