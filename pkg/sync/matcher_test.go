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
	"fmt"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/devicesync/pkg/logger"
	"github.com/carverauto/devicesync/pkg/models"
)

func newTestMatcher() *Matcher {
	return NewMatcher(newFakeClock(), logger.NewTestLogger())
}

func intuneDevice(id, key string) models.IntuneDevice {
	return models.IntuneDevice{DeviceID: id, AzureADDeviceID: key, DeviceName: "dev-" + id}
}

func defenderDevice(id, key string) models.DefenderDevice {
	return models.DefenderDevice{MachineID: id, AADDeviceID: key, DNSName: "host-" + id}
}

func TestMatchPairsDevicesBySharedKey(t *testing.T) {
	m := newTestMatcher()

	records := m.Match(
		[]models.IntuneDevice{intuneDevice("a1", "K1")},
		[]models.DefenderDevice{defenderDevice("b1", "K1")},
	)

	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, models.StateMatched, rec.SyncState)
	assert.Equal(t, "K1", rec.SyncKey)
	require.NotNil(t, rec.Intune)
	require.NotNil(t, rec.Defender)
	assert.Equal(t, "a1", rec.Intune.DeviceID)
	assert.Equal(t, "b1", rec.Defender.MachineID)
}

func TestMatchEmitsOnlyIntuneWhenKeyAbsentFromDefender(t *testing.T) {
	m := newTestMatcher()

	records := m.Match(
		[]models.IntuneDevice{intuneDevice("a1", "K1")},
		nil,
	)

	require.Len(t, records, 1)
	assert.Equal(t, models.StateOnlyIntune, records[0].SyncState)
	assert.Equal(t, "K1", records[0].SyncKey)
	require.NotNil(t, records[0].Intune)
	assert.Nil(t, records[0].Defender)
}

func TestMatchKeylessDefenderGetsGeneratedKey(t *testing.T) {
	m := newTestMatcher()

	records := m.Match(
		nil,
		[]models.DefenderDevice{defenderDevice("b1", "")},
	)

	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, models.StateOnlyDefender, rec.SyncState)
	assert.NotEmpty(t, rec.SyncKey)
	assert.NotEqual(t, "b1", rec.SyncKey)

	_, err := uuid.Parse(rec.SyncKey)
	assert.NoError(t, err, "generated sync key should be a UUID")
}

func TestMatchKeylessDefenderNeverMatches(t *testing.T) {
	m := newTestMatcher()

	// A keyless machine cannot be joined even if an intune device carries
	// an empty-looking key of its own.
	records := m.Match(
		[]models.IntuneDevice{intuneDevice("a1", "K1")},
		[]models.DefenderDevice{defenderDevice("b1", "")},
	)

	require.Len(t, records, 2)

	for _, rec := range records {
		assert.NotEqual(t, models.StateMatched, rec.SyncState)
	}
}

func TestMatchKeylessIntuneKeyedByLocalID(t *testing.T) {
	m := newTestMatcher()

	records := m.Match(
		[]models.IntuneDevice{intuneDevice("a1", "")},
		nil,
	)

	require.Len(t, records, 1)
	assert.Equal(t, models.StateOnlyIntune, records[0].SyncState)
	assert.Equal(t, "a1", records[0].SyncKey, "keyless managed device keeps its local id as sync key")
}

func TestMatchDisjointInputsProduceNoMatches(t *testing.T) {
	m := newTestMatcher()

	intuneDevices := []models.IntuneDevice{
		intuneDevice("a1", "KA1"),
		intuneDevice("a2", "KA2"),
		intuneDevice("a3", "KA3"),
	}
	defenderDevices := []models.DefenderDevice{
		defenderDevice("b1", "KB1"),
		defenderDevice("b2", "KB2"),
	}

	records := m.Match(intuneDevices, defenderDevices)

	require.Len(t, records, len(intuneDevices)+len(defenderDevices))

	matched, onlyIntune, onlyDefender := CountByState(records)
	assert.Zero(t, matched)
	assert.Equal(t, 3, onlyIntune)
	assert.Equal(t, 2, onlyDefender)
}

func TestMatchBijectionProducesAllMatches(t *testing.T) {
	m := newTestMatcher()

	const n = 25

	intuneDevices := make([]models.IntuneDevice, 0, n)
	defenderDevices := make([]models.DefenderDevice, 0, n)

	for i := 0; i < n; i++ {
		key := fmt.Sprintf("K%d", i)
		intuneDevices = append(intuneDevices, intuneDevice(fmt.Sprintf("a%d", i), key))
		defenderDevices = append(defenderDevices, defenderDevice(fmt.Sprintf("b%d", i), key))
	}

	records := m.Match(intuneDevices, defenderDevices)

	require.Len(t, records, n)

	matched, onlyIntune, onlyDefender := CountByState(records)
	assert.Equal(t, n, matched)
	assert.Zero(t, onlyIntune)
	assert.Zero(t, onlyDefender)
}

func TestMatchPartitionTotality(t *testing.T) {
	m := newTestMatcher()

	intuneDevices := []models.IntuneDevice{
		intuneDevice("a1", "K1"),
		intuneDevice("a2", "K2"),
		intuneDevice("a3", ""),
		intuneDevice("a4", "K9"),
	}
	defenderDevices := []models.DefenderDevice{
		defenderDevice("b1", "K1"),
		defenderDevice("b2", ""),
		defenderDevice("b3", "K7"),
	}

	records := m.Match(intuneDevices, defenderDevices)

	matched, onlyIntune, onlyDefender := CountByState(records)
	assert.Equal(t, len(intuneDevices)+len(defenderDevices),
		matched*2+onlyIntune+onlyDefender,
		"every input device appears in exactly one record")
}

func TestMatchIdempotentPartition(t *testing.T) {
	m := newTestMatcher()

	intuneDevices := []models.IntuneDevice{
		intuneDevice("a1", "K1"),
		intuneDevice("a2", ""),
		intuneDevice("a3", "K3"),
	}
	defenderDevices := []models.DefenderDevice{
		defenderDevice("b1", "K1"),
		defenderDevice("b2", "K5"),
		defenderDevice("b3", ""),
	}

	first := m.Match(intuneDevices, defenderDevices)
	second := m.Match(intuneDevices, defenderDevices)

	// Record ids are freshly generated each run; the (syncKey, syncState)
	// partition must be identical. Generated keys for keyless machines
	// differ by construction, so compare states for those.
	assert.Equal(t, partitionPairs(first, true), partitionPairs(second, true))

	firstIDs := recordIDs(first)
	secondIDs := recordIDs(second)

	for id := range firstIDs {
		assert.NotContains(t, secondIDs, id, "record ids must be regenerated per run")
	}
}

func TestMatchRunTimestampIsUniform(t *testing.T) {
	m := newTestMatcher()

	records := m.Match(
		[]models.IntuneDevice{intuneDevice("a1", "K1"), intuneDevice("a2", "")},
		[]models.DefenderDevice{defenderDevice("b1", "K9"), defenderDevice("b2", "")},
	)

	require.NotEmpty(t, records)

	ts := records[0].SyncTimestamp
	for _, rec := range records {
		assert.Equal(t, ts, rec.SyncTimestamp, "all records in one run share the sync timestamp")
	}
}

func TestMatchDuplicateIntuneKeysLastMatchWins(t *testing.T) {
	m := newTestMatcher()

	// Two managed devices resolving to the same machine: the later one
	// silently overwrites the earlier matched record. Pinned upstream
	// behavior, not a target for fixing.
	records := m.Match(
		[]models.IntuneDevice{intuneDevice("a1", "K1"), intuneDevice("a2", "K1")},
		[]models.DefenderDevice{defenderDevice("b1", "K1")},
	)

	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, models.StateMatched, rec.SyncState)
	assert.Equal(t, "K1", rec.SyncKey)
	require.NotNil(t, rec.Intune)
	assert.Equal(t, "a2", rec.Intune.DeviceID, "last match wins on duplicate join keys")
}

func TestMatchDuplicateDefenderKeysKeepLastOccurrence(t *testing.T) {
	m := newTestMatcher()

	records := m.Match(
		nil,
		[]models.DefenderDevice{defenderDevice("b1", "K1"), defenderDevice("b2", "K1")},
	)

	require.Len(t, records, 1)
	require.NotNil(t, records[0].Defender)
	assert.Equal(t, "b2", records[0].Defender.MachineID)
}

func TestMatchSyncKeysUniqueWithinRun(t *testing.T) {
	m := newTestMatcher()

	records := m.Match(
		[]models.IntuneDevice{
			intuneDevice("a1", "K1"),
			intuneDevice("a2", "K2"),
			intuneDevice("a3", ""),
		},
		[]models.DefenderDevice{
			defenderDevice("b1", "K2"),
			defenderDevice("b2", "K8"),
			defenderDevice("b3", ""),
			defenderDevice("b4", ""),
		},
	)

	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		require.NotEmpty(t, rec.SyncKey)
		assert.False(t, seen[rec.SyncKey], "duplicate sync key %q", rec.SyncKey)
		seen[rec.SyncKey] = true
	}
}

func TestMatchStateConsistentWithPayloads(t *testing.T) {
	m := newTestMatcher()

	records := m.Match(
		[]models.IntuneDevice{intuneDevice("a1", "K1"), intuneDevice("a2", "K2")},
		[]models.DefenderDevice{defenderDevice("b1", "K2"), defenderDevice("b2", "")},
	)

	for _, rec := range records {
		require.True(t, rec.SyncState.Valid())

		switch rec.SyncState {
		case models.StateMatched:
			assert.NotNil(t, rec.Intune)
			assert.NotNil(t, rec.Defender)
		case models.StateOnlyIntune:
			assert.NotNil(t, rec.Intune)
			assert.Nil(t, rec.Defender)
		case models.StateOnlyDefender:
			assert.Nil(t, rec.Intune)
			assert.NotNil(t, rec.Defender)
		}
	}
}

// partitionPairs flattens records to sortable (syncKey, syncState) pairs.
// Generated keys are masked when maskGenerated is set, since they differ
// across runs by construction.
func partitionPairs(records []*models.SyncRecord, maskGenerated bool) []string {
	pairs := make([]string, 0, len(records))

	for _, rec := range records {
		key := rec.SyncKey
		if maskGenerated && rec.SyncState == models.StateOnlyDefender && rec.Defender != nil && rec.Defender.AADDeviceID == "" {
			key = "<generated>"
		}

		pairs = append(pairs, key+"/"+string(rec.SyncState))
	}

	sort.Strings(pairs)

	return pairs
}

func recordIDs(records []*models.SyncRecord) map[string]bool {
	ids := make(map[string]bool, len(records))
	for _, rec := range records {
		ids[rec.ID] = true
	}

	return ids
}
