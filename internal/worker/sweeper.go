// Package worker hosts the background sweep that enforces grant deadlines
// when no request happens to trigger the lazy path: overdue grants expire,
// idle sessions close, and deferred auto-revokes fire even if the in-process
// timer that armed them died with its process.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-vault-trust/internal/logger"
	"github.com/MKhiriev/go-vault-trust/internal/service"
)

// Sweeper runs the periodic enforcement pass. Idle until Start is called.
type Sweeper struct {
	grantService service.GrantService
	interval     time.Duration
	logger       *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSweeper creates a Sweeper ticking at interval. A zero or negative
// interval defaults to 30 seconds.
func NewSweeper(grantService service.GrantService, interval time.Duration, logger *logger.Logger) *Sweeper {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Sweeper{
		grantService: grantService,
		interval:     interval,
		logger:       logger,
	}
}

// Start stops any previously running sweep, then launches a background
// goroutine that runs one pass every interval. The goroutine exits when ctx
// is cancelled or Stop is called.
func (s *Sweeper) Start(ctx context.Context) {
	s.Stop()

	s.mu.Lock()
	sweepCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		t := time.NewTicker(s.interval)
		defer t.Stop()

		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-t.C:
				s.runOnce(sweepCtx)
			}
		}
	}()
}

// Stop cancels the background goroutine and blocks until it has fully
// exited. Safe to call when the sweeper is not running.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

// runOnce performs one sweep pass. Each step's failure is logged and left
// for the next tick; the conditional updates underneath make missed or
// doubled passes idempotent.
func (s *Sweeper) runOnce(ctx context.Context) {
	ctx = s.logger.WithContext(ctx)

	if err := s.grantService.SweepExpired(ctx); err != nil {
		s.logger.Err(err).Msg("expiry sweep pass failed")
	}
	if err := s.grantService.CloseIdleSessions(ctx); err != nil {
		s.logger.Err(err).Msg("idle session pass failed")
	}
	if err := s.grantService.RevokeDue(ctx); err != nil {
		s.logger.Err(err).Msg("deferred auto-revoke pass failed")
	}
}
