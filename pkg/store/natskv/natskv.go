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

// Package natskv implements the sync record document store on a NATS
// JetStream KV bucket, for deployments without PostgreSQL.
package natskv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/devicesync/pkg/logger"
	"github.com/carverauto/devicesync/pkg/models"
)

// Store keeps one KV entry per sync record, keyed by record id so a full
// snapshot rewrite never collides on sync keys. Cost is reported as one
// unit per KV operation.
type Store struct {
	nc     *nats.Conn
	kv     jetstream.KeyValue
	logger logger.Logger
}

// New connects to NATS and creates (or binds to) the KV bucket.
func New(ctx context.Context, natsURL, bucket string, log logger.Logger) (*Store, error) {
	nc, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	kv, err := js.CreateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: bucket})
	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("failed to create KV bucket: %w", err)
	}

	return &Store{nc: nc, kv: kv, logger: log}, nil
}

// Close drops the NATS connection.
func (s *Store) Close() {
	s.nc.Close()
}

// DeleteAll purges every key in the bucket.
func (s *Store) DeleteAll(ctx context.Context) (int, float64, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil && !errors.Is(err, jetstream.ErrNoKeysFound) {
		return 0, 1, classifyError(err)
	}

	cost := float64(1)
	deleted := 0

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return deleted, cost, err
		}

		cost++

		if err := s.kv.Purge(ctx, key); err != nil {
			return deleted, cost, classifyError(err)
		}

		deleted++
	}

	return deleted, cost, nil
}

// UpsertBatch puts each record under its id, reporting per-item outcomes.
func (s *Store) UpsertBatch(ctx context.Context, records []*models.SyncRecord) ([]models.ItemResult, float64, error) {
	items := make([]models.ItemResult, 0, len(records))

	var cost float64

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return items, cost, err
		}

		items = append(items, models.ItemResult{
			SyncKey: rec.SyncKey,
			Err:     s.putOne(ctx, rec),
		})
		cost++
	}

	return items, cost, nil
}

func (s *Store) putOne(ctx context.Context, rec *models.SyncRecord) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: marshal record: %w", models.ErrTerminal, err)
	}

	if _, err := s.kv.Put(ctx, rec.ID, value); err != nil {
		return classifyError(err)
	}

	return nil
}

// QueryPage lists the bucket keys, sorts them, and serves the page after
// the continuation token (the last key of the previous page).
func (s *Store) QueryPage(ctx context.Context, limit int, pageToken string) ([]*models.SyncRecord, string, float64, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return []*models.SyncRecord{}, "", 1, nil
		}

		return nil, "", 1, classifyError(err)
	}

	sort.Strings(keys)

	start := 0
	if pageToken != "" {
		start = sort.SearchStrings(keys, pageToken)
		if start < len(keys) && keys[start] == pageToken {
			start++
		}
	}

	cost := float64(1)
	records := make([]*models.SyncRecord, 0, limit)

	var next string

	for i := start; i < len(keys); i++ {
		if len(records) == limit {
			next = keys[i-1]
			break
		}

		entry, err := s.kv.Get(ctx, keys[i])
		cost++

		if err != nil {
			if errors.Is(err, jetstream.ErrKeyNotFound) {
				// Deleted between Keys and Get; skip.
				continue
			}

			return nil, "", cost, classifyError(err)
		}

		var rec models.SyncRecord

		if err := json.Unmarshal(entry.Value(), &rec); err != nil {
			return nil, "", cost, fmt.Errorf("failed to unmarshal sync record %s: %w", keys[i], err)
		}

		records = append(records, &rec)
	}

	return records, next, cost, nil
}
