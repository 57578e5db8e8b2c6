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

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carverauto/devicesync/pkg/config"
	"github.com/carverauto/devicesync/pkg/logger"
	"github.com/carverauto/devicesync/pkg/store/cnpg"
	"github.com/carverauto/devicesync/pkg/store/natskv"
	"github.com/carverauto/devicesync/pkg/sync"
	"github.com/carverauto/devicesync/pkg/sync/integrations/azauth"
	"github.com/carverauto/devicesync/pkg/sync/integrations/defender"
	"github.com/carverauto/devicesync/pkg/sync/integrations/intune"
)

func main() {
	configPath := flag.String("config", "/etc/devicesync/devicesync.json", "Path to config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgLoader := config.NewConfig(nil)

	var cfg sync.Config

	if err := cfgLoader.LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logg, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	store, closeStore, err := openStore(ctx, &cfg, logg)
	if err != nil {
		log.Fatalf("Failed to open document store: %v", err)
	}
	defer closeStore()

	writer, err := sync.NewStoreWriter(store, cfg.BatchSize, cfg.FanOutLimit, nil, logg)
	if err != nil {
		log.Fatalf("Failed to create store writer: %v", err)
	}

	orchestrator, err := sync.NewOrchestrator(
		newIntuneReader(&cfg, logg),
		newDefenderReader(&cfg, logg),
		nil,
		writer,
		nil,
		logg,
	)
	if err != nil {
		log.Fatalf("Failed to create orchestrator: %v", err)
	}

	service := sync.NewSyncService(orchestrator, &cfg, nil, logg)

	if err := service.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Device cross-sync service failed: %v", err)
	}
}

func openStore(ctx context.Context, cfg *sync.Config, logg logger.Logger) (sync.DocumentStore, func(), error) {
	switch cfg.Store.Type {
	case sync.StoreTypeNATS:
		st, err := natskv.New(ctx, cfg.Store.URL, cfg.Store.Bucket, logg)
		if err != nil {
			return nil, nil, err
		}

		return st, st.Close, nil
	default:
		st, err := cnpg.New(ctx, cfg.Store.DSN, logg)
		if err != nil {
			return nil, nil, err
		}

		return st, st.Close, nil
	}
}

func newIntuneReader(cfg *sync.Config, logg logger.Logger) *intune.Reader {
	httpClient := newHTTPClient(cfg.Intune)
	tokens := azauth.NewCachedTokenProvider(
		azauth.NewClientCredentialsProvider(
			cfg.Intune.TokenURL, cfg.Intune.ClientID, cfg.Intune.ClientSecret, "", httpClient),
		nil)

	return intune.NewReader(cfg.Intune.Endpoint, cfg.Intune.PageSize, tokens, httpClient, logg)
}

func newDefenderReader(cfg *sync.Config, logg logger.Logger) *defender.Reader {
	httpClient := newHTTPClient(cfg.Defender)
	tokens := azauth.NewCachedTokenProvider(
		azauth.NewClientCredentialsProvider(
			cfg.Defender.TokenURL, cfg.Defender.ClientID, cfg.Defender.ClientSecret, "", httpClient),
		nil)

	return defender.NewReader(cfg.Defender.Endpoint, cfg.Defender.PageSize, tokens, httpClient, logg)
}

func newHTTPClient(src *sync.SourceConfig) *http.Client {
	timeout := time.Duration(src.Timeout)
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &http.Client{Timeout: timeout}
}
