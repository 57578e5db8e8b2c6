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
	"fmt"
	"sync"
	"time"

	"github.com/carverauto/devicesync/pkg/logger"
	"github.com/carverauto/devicesync/pkg/models"
)

var (
	errNilIntuneReader   = errors.New("intune reader is required")
	errNilDefenderReader = errors.New("defender reader is required")
	errNilWriter         = errors.New("store writer is required")
)

// Orchestrator sequences one cross-sync run: fetch both catalogs
// concurrently, match after both complete, clear the store, then bulk-write
// the new snapshot. Phase timing and cost are captured independently; a
// phase failure short-circuits the rest and yields an error with no result.
type Orchestrator struct {
	intune   IntuneReader
	defender DefenderReader
	matcher  *Matcher
	writer   *StoreWriter
	clock    Clock
	logger   logger.Logger
}

// NewOrchestrator wires an Orchestrator from its collaborators.
func NewOrchestrator(
	intune IntuneReader,
	defender DefenderReader,
	matcher *Matcher,
	writer *StoreWriter,
	clock Clock,
	log logger.Logger,
) (*Orchestrator, error) {
	switch {
	case intune == nil:
		return nil, errNilIntuneReader
	case defender == nil:
		return nil, errNilDefenderReader
	case writer == nil:
		return nil, errNilWriter
	}

	if clock == nil {
		clock = realClock{}
	}

	if matcher == nil {
		matcher = NewMatcher(clock, log)
	}

	return &Orchestrator{
		intune:   intune,
		defender: defender,
		matcher:  matcher,
		writer:   writer,
		clock:    clock,
		logger:   log,
	}, nil
}

// ExecuteCrossSync runs the full pipeline and returns the aggregate result.
// Only a fully successful run returns a result; per-record write failures do
// not fail the run and are carried in the result's error list.
func (o *Orchestrator) ExecuteCrossSync(ctx context.Context) (*models.CrossSyncResult, error) {
	phases := make(map[string]models.PhaseMetrics, 5)

	intuneDevices, defenderDevices, err := o.fetchPhase(ctx, phases)
	if err != nil {
		o.logAbandonedRun(phases, err)
		return nil, err
	}

	matchStart := o.clock.Now()
	records := o.matcher.Match(intuneDevices, defenderDevices)
	phases[models.PhaseMatch] = models.PhaseMetrics{Duration: o.clock.Now().Sub(matchStart)}

	clearStart := o.clock.Now()

	deleted, clearCost, err := o.writer.ClearAll(ctx)
	phases[models.PhaseClear] = models.PhaseMetrics{
		Duration: o.clock.Now().Sub(clearStart),
		Cost:     clearCost,
	}

	if err != nil {
		err = fmt.Errorf("clear phase: %w", err)
		o.logAbandonedRun(phases, err)

		return nil, err
	}

	upsertStart := o.clock.Now()

	bulk, err := o.writer.BulkUpsert(ctx, records)
	phases[models.PhaseUpsert] = models.PhaseMetrics{
		Duration: o.clock.Now().Sub(upsertStart),
		Cost:     bulk.Cost,
	}

	if err != nil {
		err = fmt.Errorf("upsert phase: %w", err)
		o.logAbandonedRun(phases, err)

		return nil, err
	}

	matched, onlyIntune, onlyDefender := CountByState(records)

	result := &models.CrossSyncResult{
		MatchedCount:      matched,
		OnlyIntuneCount:   onlyIntune,
		OnlyDefenderCount: onlyDefender,
		TotalProcessed:    len(records),
		DeletedCount:      deleted,
		SyncTimestamp:     runTimestamp(records, o.clock),
		Phases:            phases,
		TotalCost:         totalCost(phases),
		Errors:            bulk.Errors,
	}

	o.logger.Info().
		Int("matched", matched).
		Int("only_intune", onlyIntune).
		Int("only_defender", onlyDefender).
		Int("deleted", deleted).
		Int("write_failures", bulk.FailureCount).
		Float64("total_cost", result.TotalCost).
		Msg("Cross-sync run completed")

	return result, nil
}

// fetchPhase runs both catalog fetches concurrently and waits for both to
// finish before matching starts.
func (o *Orchestrator) fetchPhase(
	ctx context.Context,
	phases map[string]models.PhaseMetrics,
) ([]models.IntuneDevice, []models.DefenderDevice, error) {
	var (
		wg sync.WaitGroup

		intuneDevices   []models.IntuneDevice
		defenderDevices []models.DefenderDevice
		intuneMetrics   models.PhaseMetrics
		defenderMetrics models.PhaseMetrics
		intuneErr       error
		defenderErr     error
	)

	wg.Add(2)

	go func() {
		defer wg.Done()

		start := o.clock.Now()

		var cost float64

		intuneDevices, cost, intuneErr = o.intune.FetchAll(ctx)
		intuneMetrics = models.PhaseMetrics{
			Duration: o.clock.Now().Sub(start),
			Cost:     cost,
		}
	}()

	go func() {
		defer wg.Done()

		start := o.clock.Now()

		var cost float64

		defenderDevices, cost, defenderErr = o.defender.FetchAll(ctx)
		defenderMetrics = models.PhaseMetrics{
			Duration: o.clock.Now().Sub(start),
			Cost:     cost,
		}
	}()

	wg.Wait()

	phases[models.PhaseFetchIntune] = intuneMetrics
	phases[models.PhaseFetchDefender] = defenderMetrics

	if intuneErr != nil {
		return nil, nil, fmt.Errorf("fetch intune devices: %w", intuneErr)
	}

	if defenderErr != nil {
		return nil, nil, fmt.Errorf("fetch defender machines: %w", defenderErr)
	}

	o.logger.Info().
		Int("intune_devices", len(intuneDevices)).
		Int("defender_machines", len(defenderDevices)).
		Msg("Fetched both catalogs")

	return intuneDevices, defenderDevices, nil
}

// logAbandonedRun records whatever phase metrics were captured before the
// failure; they are not returned to the caller.
func (o *Orchestrator) logAbandonedRun(phases map[string]models.PhaseMetrics, err error) {
	evt := o.logger.Error().Err(err)

	for name, metrics := range phases {
		evt = evt.Dur(name+"_duration", metrics.Duration).
			Float64(name+"_cost", metrics.Cost)
	}

	evt.Msg("Cross-sync run failed")
}

func runTimestamp(records []*models.SyncRecord, clock Clock) time.Time {
	if len(records) > 0 {
		return records[0].SyncTimestamp
	}

	return clock.Now().UTC()
}

func totalCost(phases map[string]models.PhaseMetrics) float64 {
	var total float64
	for _, m := range phases {
		total += m.Cost
	}

	return total
}
