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

// Package cnpg implements the sync record document store on PostgreSQL.
package cnpg

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carverauto/devicesync/pkg/logger"
	"github.com/carverauto/devicesync/pkg/models"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS sync_records (
    id             UUID PRIMARY KEY,
    sync_key       TEXT NOT NULL,
    sync_state     TEXT NOT NULL,
    sync_timestamp TIMESTAMPTZ NOT NULL,
    record         JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sync_records_sync_key ON sync_records (sync_key);
`

const upsertSQL = `
INSERT INTO sync_records (id, sync_key, sync_state, sync_timestamp, record)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
    sync_key = EXCLUDED.sync_key,
    sync_state = EXCLUDED.sync_state,
    sync_timestamp = EXCLUDED.sync_timestamp,
    record = EXCLUDED.record
`

// Store persists sync records in a sync_records table. Cost is reported as
// one unit per statement executed.
type Store struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

// New connects to PostgreSQL and ensures the schema exists.
func New(ctx context.Context, dsn string, log logger.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		pool.Close()

		return nil, fmt.Errorf("failed to ensure sync_records schema: %w", err)
	}

	return &Store{pool: pool, logger: log}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// DeleteAll removes every persisted sync record.
func (s *Store) DeleteAll(ctx context.Context) (int, float64, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM sync_records")
	if err != nil {
		return 0, 1, classifyError(err)
	}

	return int(tag.RowsAffected()), 1, nil
}

// UpsertBatch writes each record individually so one rejected record cannot
// abort its batch siblings. Per-item outcomes are returned in order.
func (s *Store) UpsertBatch(ctx context.Context, records []*models.SyncRecord) ([]models.ItemResult, float64, error) {
	items := make([]models.ItemResult, 0, len(records))

	var cost float64

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return items, cost, err
		}

		items = append(items, models.ItemResult{
			SyncKey: rec.SyncKey,
			Err:     s.upsertOne(ctx, rec),
		})
		cost++
	}

	return items, cost, nil
}

func (s *Store) upsertOne(ctx context.Context, rec *models.SyncRecord) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: marshal record: %w", models.ErrTerminal, err)
	}

	_, err = s.pool.Exec(ctx, upsertSQL,
		rec.ID, rec.SyncKey, string(rec.SyncState), rec.SyncTimestamp, doc)
	if err != nil {
		return classifyError(err)
	}

	return nil
}

// QueryPage returns records ordered by sync key using keyset pagination.
// The continuation token is the last sync key of the page, base64-encoded.
func (s *Store) QueryPage(ctx context.Context, limit int, pageToken string) ([]*models.SyncRecord, string, float64, error) {
	after, err := decodePageToken(pageToken)
	if err != nil {
		return nil, "", 0, err
	}

	rows, err := s.pool.Query(ctx,
		"SELECT record FROM sync_records WHERE sync_key > $1 ORDER BY sync_key LIMIT $2",
		after, limit+1)
	if err != nil {
		return nil, "", 1, classifyError(err)
	}
	defer rows.Close()

	records := make([]*models.SyncRecord, 0, limit)

	for rows.Next() {
		var doc []byte

		if err := rows.Scan(&doc); err != nil {
			return nil, "", 1, fmt.Errorf("failed to scan sync record: %w", err)
		}

		var rec models.SyncRecord

		if err := json.Unmarshal(doc, &rec); err != nil {
			return nil, "", 1, fmt.Errorf("failed to unmarshal sync record: %w", err)
		}

		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, "", 1, classifyError(err)
	}

	var next string

	if len(records) > limit {
		records = records[:limit]
		next = encodePageToken(records[limit-1].SyncKey)
	}

	return records, next, 1, nil
}

func encodePageToken(syncKey string) string {
	return base64.URLEncoding.EncodeToString([]byte(syncKey))
}

func decodePageToken(token string) (string, error) {
	if token == "" {
		return "", nil
	}

	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("invalid page token: %w", err)
	}

	return string(raw), nil
}
