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

import (
	"errors"
	"strings"
)

var (
	// ErrThrottled marks a store write rejected by backpressure. Writes
	// failing with this class are retried with backoff before being
	// recorded as permanent failures.
	ErrThrottled = errors.New("store throttled")

	// ErrTerminal marks a per-record failure that must not be retried,
	// such as a validation rejection by the store.
	ErrTerminal = errors.New("terminal record failure")
)

// IsThrottled reports whether err is a throttling/backpressure signal.
// Store backends wrap ErrThrottled; the string fallback catches errors that
// crossed a boundary which dropped the wrap chain.
func IsThrottled(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrThrottled) {
		return true
	}

	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "429") ||
		strings.Contains(msg, "throttl")
}

// IsRetryableRunError applies the coarse phase-level heuristic: a whole-run
// failure is worth one delayed retry only when it looks transient.
func IsRetryableRunError(err error) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "timed out") ||
		strings.Contains(msg, "throttl") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "connection reset")
}
