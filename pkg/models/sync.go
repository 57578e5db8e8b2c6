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

package models

import "time"

// SyncState describes which side(s) of the two catalogs a sync record was
// built from. It is a closed enumeration; no other values are persisted.
type SyncState string

const (
	// StateMatched - the device was found in both catalogs.
	StateMatched SyncState = "matched"
	// StateOnlyIntune - the device exists only in the management catalog.
	StateOnlyIntune SyncState = "only_intune"
	// StateOnlyDefender - the device exists only in the security catalog.
	StateOnlyDefender SyncState = "only_defender"
)

// Valid reports whether s is one of the closed enumeration values.
func (s SyncState) Valid() bool {
	switch s {
	case StateMatched, StateOnlyIntune, StateOnlyDefender:
		return true
	default:
		return false
	}
}

// SyncRecord is the unit persisted to the document store. Exactly one of
// Intune/Defender is set for the singly-sourced states, both for matched;
// the absent side is nil, never an empty object.
type SyncRecord struct {
	ID            string          `json:"id"`
	SyncKey       string          `json:"syncKey"`
	SyncState     SyncState       `json:"syncState"`
	SyncTimestamp time.Time       `json:"syncTimestamp"`
	Intune        *IntuneDevice   `json:"intune,omitempty"`
	Defender      *DefenderDevice `json:"defender,omitempty"`
}

// RecordError is a per-record write failure, keyed by the record's sync key.
type RecordError struct {
	SyncKey string `json:"syncKey"`
	Error   string `json:"error"`
}

// ItemResult is the per-record outcome of a store batch write.
type ItemResult struct {
	SyncKey string
	Err     error
}

// BulkResult aggregates a bulk upsert: per-record success/failure counts,
// the store cost consumed, and the failures keyed by sync key.
type BulkResult struct {
	SuccessCount int           `json:"successCount"`
	FailureCount int           `json:"failureCount"`
	Cost         float64       `json:"cost"`
	Errors       []RecordError `json:"errors"`
}

// Phase names for CrossSyncResult.Phases.
const (
	PhaseFetchIntune   = "fetch_intune"
	PhaseFetchDefender = "fetch_defender"
	PhaseMatch         = "match"
	PhaseClear         = "clear"
	PhaseUpsert        = "upsert"
)

// PhaseMetrics captures one orchestrator phase.
type PhaseMetrics struct {
	Duration time.Duration `json:"duration"`
	Cost     float64       `json:"cost"`
}

// CrossSyncResult is returned only for a fully successful run. Per-record
// upsert failures are carried in Errors; a failed phase yields an error and
// no result at all.
type CrossSyncResult struct {
	MatchedCount      int                     `json:"matchedCount"`
	OnlyIntuneCount   int                     `json:"onlyIntuneCount"`
	OnlyDefenderCount int                     `json:"onlyDefenderCount"`
	TotalProcessed    int                     `json:"totalProcessed"`
	DeletedCount      int                     `json:"deletedCount"`
	SyncTimestamp     time.Time               `json:"syncTimestamp"`
	Phases            map[string]PhaseMetrics `json:"phases"`
	TotalCost         float64                 `json:"totalCost"`
	Errors            []RecordError           `json:"errors"`
}

// SyncStatus is the caller-boundary judgment of a completed run.
type SyncStatus string

const (
	// StatusFull - the run completed with no per-record failures.
	StatusFull SyncStatus = "full"
	// StatusPartial - the run completed but some records failed to persist.
	StatusPartial SyncStatus = "partial"
)

// Status derives the caller-boundary status from the per-record error list.
func (r *CrossSyncResult) Status() SyncStatus {
	if len(r.Errors) > 0 {
		return StatusPartial
	}

	return StatusFull
}
