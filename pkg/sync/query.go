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

	"github.com/carverauto/devicesync/pkg/logger"
	"github.com/carverauto/devicesync/pkg/models"
)

const (
	defaultQueryLimit = 50
	maxQueryLimit     = 500
)

// QueryService provides paginated read access to persisted sync records.
// It is a thin pass-through over the store; readers querying during a
// resync may observe a partially repopulated snapshot.
type QueryService struct {
	store  DocumentStore
	logger logger.Logger
}

// NewQueryService creates a QueryService.
func NewQueryService(store DocumentStore, log logger.Logger) *QueryService {
	return &QueryService{store: store, logger: log}
}

// QueryPage returns one page of sync records plus the continuation token
// for the next page (empty when exhausted). Limits outside [1, 500] are
// clamped; a non-positive limit selects the default of 50.
func (q *QueryService) QueryPage(
	ctx context.Context,
	limit int,
	pageToken string,
) ([]*models.SyncRecord, string, float64, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	if limit > maxQueryLimit {
		limit = maxQueryLimit
	}

	records, next, cost, err := q.store.QueryPage(ctx, limit, pageToken)
	if err != nil {
		return nil, "", cost, err
	}

	q.logger.Debug().
		Int("records", len(records)).
		Bool("has_more", next != "").
		Float64("cost", cost).
		Msg("Served sync record page")

	return records, next, cost, nil
}
