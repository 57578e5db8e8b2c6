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

package natskv

import (
	"errors"
	"fmt"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/devicesync/pkg/models"
)

func TestClassifyErrorTransientNATSFailures(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		throttled bool
	}{
		{name: "timeout", err: nats.ErrTimeout, throttled: true},
		{name: "no responders", err: nats.ErrNoResponders, throttled: true},
		{name: "slow consumer", err: nats.ErrSlowConsumer, throttled: true},
		{name: "drain timeout", err: nats.ErrDrainTimeout, throttled: true},
		{name: "wrapped timeout", err: fmt.Errorf("put: %w", nats.ErrTimeout), throttled: true},
		{name: "connection closed is terminal", err: nats.ErrConnectionClosed, throttled: false},
		{name: "unrelated error", err: errors.New("bucket missing"), throttled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err)
			require.Error(t, got)
			assert.Equal(t, tt.throttled, errors.Is(got, models.ErrThrottled))
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassifyErrorNil(t *testing.T) {
	assert.NoError(t, classifyError(nil))
}
