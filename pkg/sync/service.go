/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package sync

import (
	"context"
	"sync"
	"time"

	"github.com/carverauto/devicesync/pkg/logger"
	"github.com/carverauto/devicesync/pkg/models"
)

// SyncService runs cross-sync on a fixed interval. Runs are mutually
// exclusive within the process: a trigger that arrives while a run is
// in-flight is skipped with a warning rather than racing the store.
//
// A run failing with a transient-looking error is retried once after a
// fixed delay; everything else surfaces immediately.
type SyncService struct {
	runner     CrossSyncRunner
	interval   time.Duration
	retryDelay time.Duration
	clock      Clock
	logger     logger.Logger

	runMu sync.Mutex

	resultMu   sync.RWMutex
	lastResult *models.CrossSyncResult
	lastStatus models.SyncStatus
	lastRunAt  time.Time

	cancel context.CancelFunc
}

// NewSyncService creates the interval runner.
func NewSyncService(runner CrossSyncRunner, config *Config, clock Clock, log logger.Logger) *SyncService {
	if clock == nil {
		clock = realClock{}
	}

	return &SyncService{
		runner:     runner,
		interval:   time.Duration(config.SyncInterval),
		retryDelay: time.Duration(config.RetryDelay),
		clock:      clock,
		logger:     log,
	}
}

// Start runs an initial sync immediately, then syncs on every interval tick
// until the context is canceled or Stop is called.
func (s *SyncService) Start(ctx context.Context) error {
	serviceCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.logger.Info().
		Dur("interval", s.interval).
		Msg("Starting device cross-sync service")

	ticker := s.clock.Ticker(s.interval)
	defer ticker.Stop()

	go s.RunCycle(serviceCtx)

	for {
		select {
		case <-serviceCtx.Done():
			return serviceCtx.Err()
		case <-ticker.Chan():
			go s.RunCycle(serviceCtx)
		}
	}
}

// Stop cancels the scheduling loop. In-flight batch writes are not
// interrupted beyond context cancellation.
func (s *SyncService) Stop(_ context.Context) error {
	s.logger.Info().Msg("Stopping device cross-sync service")

	if s.cancel != nil {
		s.cancel()
	}

	return nil
}

// RunCycle performs one scheduled sync, applying the skip-if-running lock
// and the one-shot delayed retry for transient run failures.
func (s *SyncService) RunCycle(ctx context.Context) {
	if !s.runMu.TryLock() {
		s.logger.Warn().Msg("Previous cross-sync run still in flight, skipping trigger")
		return
	}
	defer s.runMu.Unlock()

	result, err := s.runner.ExecuteCrossSync(ctx)
	if err != nil {
		if !models.IsRetryableRunError(err) {
			s.logger.Error().Err(err).Msg("Cross-sync run failed")
			return
		}

		s.logger.Warn().
			Err(err).
			Dur("retry_delay", s.retryDelay).
			Msg("Cross-sync run failed with a transient error, retrying once")

		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(s.retryDelay):
		}

		result, err = s.runner.ExecuteCrossSync(ctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("Cross-sync retry failed")
			return
		}
	}

	status := result.Status()

	s.resultMu.Lock()
	s.lastResult = result
	s.lastStatus = status
	s.lastRunAt = s.clock.Now()
	s.resultMu.Unlock()

	s.logger.Info().
		Str("status", string(status)).
		Int("total_processed", result.TotalProcessed).
		Int("record_errors", len(result.Errors)).
		Msg("Cross-sync cycle finished")
}

// LastResult returns the most recent successful run, its caller-boundary
// status, and when it finished. The result is nil until a run succeeds.
func (s *SyncService) LastResult() (*models.CrossSyncResult, models.SyncStatus, time.Time) {
	s.resultMu.RLock()
	defer s.resultMu.RUnlock()

	return s.lastResult, s.lastStatus, s.lastRunAt
}
