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
	"errors"
	"sync"
	"time"

	"github.com/carverauto/devicesync/pkg/logger"
	"github.com/carverauto/devicesync/pkg/models"
)

const (
	defaultBatchSize   = 100
	defaultFanOutLimit = 4
	maxWriteRetries    = 3
	baseRetryBackoff   = time.Second
)

var errNilStore = errors.New("document store is required")

// StoreWriter clears and bulk-writes sync records against a DocumentStore.
// Records are grouped into fixed-size batches dispatched with bounded
// concurrency; each batch is independent, and a record failing inside a
// batch never fails its siblings. Writes rejected by store backpressure are
// retried with exponential backoff before being recorded as permanent
// per-record failures. Terminal failures are never retried.
type StoreWriter struct {
	store     DocumentStore
	batchSize int
	fanOut    int
	clock     Clock
	logger    logger.Logger
}

// NewStoreWriter creates a StoreWriter. Non-positive batchSize or fanOut
// fall back to the defaults (100 and 4).
func NewStoreWriter(store DocumentStore, batchSize, fanOut int, clock Clock, log logger.Logger) (*StoreWriter, error) {
	if store == nil {
		return nil, errNilStore
	}

	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	if fanOut <= 0 {
		fanOut = defaultFanOutLimit
	}

	if clock == nil {
		clock = realClock{}
	}

	return &StoreWriter{
		store:     store,
		batchSize: batchSize,
		fanOut:    fanOut,
		clock:     clock,
		logger:    log,
	}, nil
}

// ClearAll removes every persisted sync record, retrying on backpressure
// with the same schedule as record writes. Its deleted count and cost are
// reported separately from upsert metrics so a failure to clear stale data
// is distinguishable from a sync that produced nothing.
func (w *StoreWriter) ClearAll(ctx context.Context) (deleted int, cost float64, err error) {
	for attempt := 0; ; attempt++ {
		var c float64

		deleted, c, err = w.store.DeleteAll(ctx)
		cost += c

		if err == nil || !models.IsThrottled(err) || attempt >= maxWriteRetries {
			return deleted, cost, err
		}

		delay := retryBackoff(attempt)
		w.logger.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Dur("backoff", delay).
			Msg("Store throttled during clear, retrying")

		if waitErr := w.wait(ctx, delay); waitErr != nil {
			return deleted, cost, waitErr
		}
	}
}

// BulkUpsert writes records in batches and accounts success and failure per
// record. The returned error is reserved for cancellation; store failures
// surface in the result.
func (w *StoreWriter) BulkUpsert(ctx context.Context, records []*models.SyncRecord) (*models.BulkResult, error) {
	result := &models.BulkResult{Errors: make([]models.RecordError, 0)}

	if len(records) == 0 {
		return result, nil
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	sem := make(chan struct{}, w.fanOut)

	for start := 0; start < len(records); start += w.batchSize {
		end := start + w.batchSize
		if end > len(records) {
			end = len(records)
		}

		batch := records[start:end]

		wg.Add(1)

		sem <- struct{}{}

		go func(batch []*models.SyncRecord) {
			defer wg.Done()
			defer func() { <-sem }()

			batchResult := w.writeBatch(ctx, batch)

			mu.Lock()
			result.SuccessCount += batchResult.SuccessCount
			result.FailureCount += batchResult.FailureCount
			result.Cost += batchResult.Cost
			result.Errors = append(result.Errors, batchResult.Errors...)
			mu.Unlock()
		}(batch)
	}

	wg.Wait()

	if ctx.Err() != nil {
		return result, ctx.Err()
	}

	return result, nil
}

// writeBatch writes one batch, retrying throttled records with backoff.
// A record failing with a throttling signal is re-attempted up to
// maxWriteRetries times (1s, 2s, 4s); terminal failures are recorded on the
// first attempt.
func (w *StoreWriter) writeBatch(ctx context.Context, batch []*models.SyncRecord) *models.BulkResult {
	result := &models.BulkResult{Errors: make([]models.RecordError, 0)}
	pending := batch

	for attempt := 0; len(pending) > 0; attempt++ {
		items, cost, err := w.store.UpsertBatch(ctx, pending)
		result.Cost += cost

		var retry []*models.SyncRecord

		if err != nil {
			// Whole-call failure: every pending record shares the
			// outcome. Throttling is retried, anything else is
			// terminal for the batch.
			if models.IsThrottled(err) {
				retry = pending
			} else {
				w.recordFailures(result, pending, err)
				return result
			}
		} else {
			retry = w.accountItems(result, pending, items)
		}

		if len(retry) == 0 {
			return result
		}

		if attempt >= maxWriteRetries {
			// Retries exhausted; record the stragglers as permanent.
			w.recordFailures(result, retry, models.ErrThrottled)
			return result
		}

		delay := retryBackoff(attempt)
		w.logger.Warn().
			Int("records", len(retry)).
			Int("attempt", attempt+1).
			Dur("backoff", delay).
			Msg("Store throttled, retrying failed records")

		if waitErr := w.wait(ctx, delay); waitErr != nil {
			w.recordFailures(result, retry, waitErr)
			return result
		}

		pending = retry
	}

	return result
}

// accountItems folds per-item outcomes into the result and returns the
// records worth retrying.
func (w *StoreWriter) accountItems(
	result *models.BulkResult,
	pending []*models.SyncRecord,
	items []models.ItemResult,
) []*models.SyncRecord {
	byKey := make(map[string]*models.SyncRecord, len(pending))
	for _, rec := range pending {
		byKey[rec.SyncKey] = rec
	}

	retry := make([]*models.SyncRecord, 0)

	for _, item := range items {
		if item.Err == nil {
			result.SuccessCount++
			continue
		}

		rec, ok := byKey[item.SyncKey]
		if ok && models.IsThrottled(item.Err) {
			retry = append(retry, rec)
			continue
		}

		result.FailureCount++
		result.Errors = append(result.Errors, models.RecordError{
			SyncKey: item.SyncKey,
			Error:   item.Err.Error(),
		})
	}

	return retry
}

func (*StoreWriter) recordFailures(result *models.BulkResult, records []*models.SyncRecord, err error) {
	for _, rec := range records {
		result.FailureCount++
		result.Errors = append(result.Errors, models.RecordError{
			SyncKey: rec.SyncKey,
			Error:   err.Error(),
		})
	}
}

func (w *StoreWriter) wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-w.clock.After(d):
		return nil
	}
}

// retryBackoff returns 1s, 2s, 4s for attempts 0, 1, 2.
func retryBackoff(attempt int) time.Duration {
	return baseRetryBackoff << attempt
}
