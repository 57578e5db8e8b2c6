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

//go:generate mockgen -destination=mock_sync.go -package=sync github.com/carverauto/devicesync/pkg/sync IntuneReader,DefenderReader,DocumentStore,CrossSyncRunner

package sync

import (
	"context"

	"github.com/carverauto/devicesync/pkg/models"
)

// IntuneReader fetches the full managed-device set from the endpoint
// management catalog, paging internally until exhausted. The returned cost
// is the resource units consumed by the fetch.
type IntuneReader interface {
	FetchAll(ctx context.Context) ([]models.IntuneDevice, float64, error)
}

// DefenderReader fetches the full machine set from the endpoint security
// catalog, paging internally until exhausted.
type DefenderReader interface {
	FetchAll(ctx context.Context) ([]models.DefenderDevice, float64, error)
}

// DocumentStore is the persistence boundary for sync records. UpsertBatch
// reports per-item outcomes in the returned slice; its error return is
// reserved for whole-call failures such as a lost connection. Cost values
// are abstract resource units reported by the store, used for observability
// only.
type DocumentStore interface {
	DeleteAll(ctx context.Context) (deleted int, cost float64, err error)
	UpsertBatch(ctx context.Context, records []*models.SyncRecord) ([]models.ItemResult, float64, error)
	QueryPage(ctx context.Context, limit int, pageToken string) ([]*models.SyncRecord, string, float64, error)
}

// CrossSyncRunner executes one full cross-sync run.
type CrossSyncRunner interface {
	ExecuteCrossSync(ctx context.Context) (*models.CrossSyncResult, error)
}
