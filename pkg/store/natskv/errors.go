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

	"github.com/nats-io/nats.go"

	"github.com/carverauto/devicesync/pkg/models"
)

// classifyError maps NATS client errors into the writer's retry taxonomy.
// Timeouts, slow-consumer drops, and missing responders look like transient
// server pressure and are worth retrying; everything else is terminal for
// the record.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, nats.ErrTimeout) ||
		errors.Is(err, nats.ErrNoResponders) ||
		errors.Is(err, nats.ErrSlowConsumer) ||
		errors.Is(err, nats.ErrDrainTimeout) {
		return fmt.Errorf("%w: %w", models.ErrThrottled, err)
	}

	return err
}
