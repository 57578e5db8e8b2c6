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

package azauth

import (
	"context"
	"sync"
	"time"
)

const (
	// expiryBuffer is subtracted from the reported token lifetime so a
	// token is refreshed before it actually expires mid-request.
	expiryBuffer = 5 * time.Minute

	// defaultTokenLifetime is assumed when the endpoint reports none.
	defaultTokenLifetime = time.Hour
)

// CachedTokenProvider wraps a CredentialSource and reuses its token until
// the expiry buffer is reached. All state is instance state; callers share
// a single token by sharing the provider instance.
type CachedTokenProvider struct {
	source CredentialSource
	clock  Clock

	mu     sync.RWMutex
	token  string
	expiry time.Time
}

// NewCachedTokenProvider creates a new cached token provider. A nil clock
// falls back to the system clock.
func NewCachedTokenProvider(source CredentialSource, clock Clock) *CachedTokenProvider {
	if clock == nil {
		clock = realClock{}
	}

	return &CachedTokenProvider{
		source: source,
		clock:  clock,
	}
}

// GetAccessToken returns the cached token if still valid, otherwise fetches
// a new one.
func (c *CachedTokenProvider) GetAccessToken(ctx context.Context) (string, error) {
	c.mu.RLock()
	if c.token != "" && c.clock.Now().Before(c.expiry) {
		token := c.token
		c.mu.RUnlock()

		return token, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check in case another goroutine already fetched a token
	if c.token != "" && c.clock.Now().Before(c.expiry) {
		return c.token, nil
	}

	token, lifetime, err := c.source.FetchToken(ctx)
	if err != nil {
		return "", err
	}

	if lifetime <= 0 {
		lifetime = defaultTokenLifetime
	}

	if lifetime > expiryBuffer {
		lifetime -= expiryBuffer
	}

	c.token = token
	c.expiry = c.clock.Now().Add(lifetime)

	return token, nil
}

// InvalidateToken clears the cached token; the next call fetches fresh.
func (c *CachedTokenProvider) InvalidateToken() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = ""
	c.expiry = time.Time{}
}
