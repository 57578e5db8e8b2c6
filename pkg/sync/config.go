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
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/devicesync/pkg/logger"
	"github.com/carverauto/devicesync/pkg/models"
)

const (
	defaultSyncInterval  = 6 * time.Hour
	defaultRunRetryDelay = 5 * time.Minute

	// StoreTypePostgres selects the PostgreSQL document store backend.
	StoreTypePostgres = "postgres"
	// StoreTypeNATS selects the NATS JetStream KV backend.
	StoreTypeNATS = "nats"
)

var (
	errMissingIntuneSource   = errors.New("intune source configuration is required")
	errMissingDefenderSource = errors.New("defender source configuration is required")
	errMissingSourceFields   = errors.New("source missing required fields (endpoint, token_url, client_id, client_secret)")
	errInvalidStoreType      = errors.New("store type must be 'postgres' or 'nats'")
	errMissingStoreTarget    = errors.New("store missing connection target")
)

// SourceConfig describes one catalog API: where to fetch devices and how to
// authenticate with client credentials.
type SourceConfig struct {
	Endpoint     string          `json:"endpoint"`
	TokenURL     string          `json:"token_url"`
	ClientID     string          `json:"client_id"`
	ClientSecret string          `json:"client_secret"`
	PageSize     int             `json:"page_size,omitempty"`
	Timeout      models.Duration `json:"timeout,omitempty"`
}

// StoreConfig selects and configures the document store backend.
type StoreConfig struct {
	Type   string `json:"type"`             // "postgres" or "nats"
	DSN    string `json:"dsn,omitempty"`    // postgres connection string
	URL    string `json:"url,omitempty"`    // NATS server URL
	Bucket string `json:"bucket,omitempty"` // NATS KV bucket name
}

// Config is the cross-sync service configuration.
type Config struct {
	Intune       *SourceConfig   `json:"intune"`
	Defender     *SourceConfig   `json:"defender"`
	Store        StoreConfig     `json:"store"`
	BatchSize    int             `json:"batch_size,omitempty"`
	FanOutLimit  int             `json:"fan_out_limit,omitempty"`
	SyncInterval models.Duration `json:"sync_interval,omitempty"`
	RetryDelay   models.Duration `json:"retry_delay,omitempty"`
	Logging      *logger.Config  `json:"logging,omitempty"`
}

// Validate checks required fields and fills in defaults.
func (c *Config) Validate() error {
	if c.Intune == nil {
		return errMissingIntuneSource
	}

	if c.Defender == nil {
		return errMissingDefenderSource
	}

	for name, src := range map[string]*SourceConfig{"intune": c.Intune, "defender": c.Defender} {
		if src.Endpoint == "" || src.TokenURL == "" || src.ClientID == "" || src.ClientSecret == "" {
			return fmt.Errorf("source %s: %w", name, errMissingSourceFields)
		}
	}

	switch c.Store.Type {
	case StoreTypePostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("%w: dsn", errMissingStoreTarget)
		}
	case StoreTypeNATS:
		if c.Store.URL == "" {
			c.Store.URL = "nats://localhost:4222"
		}

		if c.Store.Bucket == "" {
			c.Store.Bucket = "device-sync"
		}
	default:
		return fmt.Errorf("%w, got %q", errInvalidStoreType, c.Store.Type)
	}

	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}

	if c.FanOutLimit <= 0 {
		c.FanOutLimit = defaultFanOutLimit
	}

	if time.Duration(c.SyncInterval) == 0 {
		c.SyncInterval = models.Duration(defaultSyncInterval)
	}

	if time.Duration(c.RetryDelay) == 0 {
		c.RetryDelay = models.Duration(defaultRunRetryDelay)
	}

	return nil
}
