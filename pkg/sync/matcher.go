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
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/devicesync/pkg/logger"
	"github.com/carverauto/devicesync/pkg/models"
)

// Matcher joins the two device sets by the directory device id and produces
// the sync record set for one run. It performs no I/O; every record in one
// Match call carries the same sync timestamp.
type Matcher struct {
	clock  Clock
	logger logger.Logger
}

// NewMatcher creates a Matcher. A nil clock falls back to the system clock.
func NewMatcher(clock Clock, log logger.Logger) *Matcher {
	if clock == nil {
		clock = realClock{}
	}

	return &Matcher{clock: clock, logger: log}
}

// Match partitions the two inputs into matched, only_intune and
// only_defender records. Output order is deterministic given stable input
// order: intune iteration order first, then unmatched keyed defender
// machines in input order, then keyless defender machines.
//
// Records are keyed by sync key; when two intune devices resolve to the same
// key the later one overwrites the earlier in place. That preserves the
// upstream last-match-wins behavior on duplicate join keys.
func (m *Matcher) Match(intune []models.IntuneDevice, defender []models.DefenderDevice) []*models.SyncRecord {
	now := m.clock.Now().UTC()

	keyed := make(map[string]*models.DefenderDevice, len(defender))
	keyless := make([]*models.DefenderDevice, 0)

	for i := range defender {
		d := &defender[i]

		key := d.IdentityKey()
		if key == "" {
			keyless = append(keyless, d)
			continue
		}

		if _, dup := keyed[key]; dup {
			m.logger.Warn().
				Str("aad_device_id", key).
				Str("machine_id", d.MachineID).
				Msg("Duplicate identity key in security catalog, keeping last occurrence")
		}

		keyed[key] = d
	}

	records := make([]*models.SyncRecord, 0, len(intune)+len(defender))
	position := make(map[string]int, len(intune))
	consumed := make(map[string]bool)

	emit := func(rec *models.SyncRecord) {
		if pos, ok := position[rec.SyncKey]; ok {
			records[pos] = rec
			return
		}

		position[rec.SyncKey] = len(records)
		records = append(records, rec)
	}

	for i := range intune {
		a := &intune[i]

		key := a.IdentityKey()
		if key == "" {
			// A managed device without a directory id cannot be
			// joined; surface it for operator attention instead of
			// dropping it.
			m.logger.Warn().
				Str("device_id", a.DeviceID).
				Str("device_name", a.DeviceName).
				Msg("Managed device has no directory device id, emitting as only_intune")

			emit(m.newRecord(a.DeviceID, models.StateOnlyIntune, now, a, nil))

			continue
		}

		if b, ok := keyed[key]; ok {
			consumed[key] = true

			emit(m.newRecord(key, models.StateMatched, now, a, b))
		} else {
			emit(m.newRecord(key, models.StateOnlyIntune, now, a, nil))
		}
	}

	for i := range defender {
		d := &defender[i]

		key := d.IdentityKey()
		if key == "" || keyed[key] != d || consumed[key] {
			continue
		}

		emit(m.newRecord(key, models.StateOnlyDefender, now, nil, d))
	}

	for _, d := range keyless {
		// Keyless security-side machines stay addressable through a
		// generated sync key.
		emit(m.newRecord(uuid.NewString(), models.StateOnlyDefender, now, nil, d))
	}

	return records
}

func (*Matcher) newRecord(
	syncKey string,
	state models.SyncState,
	ts time.Time,
	a *models.IntuneDevice,
	b *models.DefenderDevice,
) *models.SyncRecord {
	return &models.SyncRecord{
		ID:            uuid.NewString(),
		SyncKey:       syncKey,
		SyncState:     state,
		SyncTimestamp: ts,
		Intune:        a,
		Defender:      b,
	}
}

// CountByState tallies records per sync state.
func CountByState(records []*models.SyncRecord) (matched, onlyIntune, onlyDefender int) {
	for _, rec := range records {
		switch rec.SyncState {
		case models.StateMatched:
			matched++
		case models.StateOnlyIntune:
			onlyIntune++
		case models.StateOnlyDefender:
			onlyDefender++
		}
	}

	return matched, onlyIntune, onlyDefender
}
