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

package cnpg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carverauto/devicesync/pkg/models"
)

// PostgreSQL SQLSTATE codes treated as backpressure: the write is worth
// retrying after a delay.
const (
	sqlstateTooManyConnections = "53300" // too_many_connections
	sqlstateConfigLimit        = "53400" // configuration_limit_exceeded
	sqlstateStatementTimeout   = "57014" // statement timeout / query_canceled
)

// classifyError maps a pgx error into the writer's retry taxonomy: capacity
// and timeout SQLSTATEs become throttling signals, everything else passes
// through as terminal for the record.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlstateTooManyConnections, sqlstateConfigLimit, sqlstateStatementTimeout:
			return fmt.Errorf("%w: %w", models.ErrThrottled, err)
		}

		return err
	}

	// Fallback to string matching for wrapped errors
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "53300"), strings.Contains(msg, "too many connections"),
		strings.Contains(msg, "53400"),
		strings.Contains(msg, "57014"), strings.Contains(msg, "statement timeout"):
		return fmt.Errorf("%w: %w", models.ErrThrottled, err)
	default:
		return err
	}
}
