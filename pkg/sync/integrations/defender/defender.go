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

// Package defender reads the machine inventory from the endpoint security
// catalog.
package defender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/carverauto/devicesync/pkg/logger"
	"github.com/carverauto/devicesync/pkg/models"
	"github.com/carverauto/devicesync/pkg/sync/integrations/azauth"
)

const defaultPageSize = 100

var errUnexpectedStatusCode = errors.New("unexpected status code")

// machinesPage is one page of the machines endpoint.
type machinesPage struct {
	Value    []models.DefenderDevice `json:"value"`
	NextLink string                  `json:"@odata.nextLink,omitempty"`
}

// PageFetcher fetches a single machines page by URL.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (*machinesPage, error)
}

// Reader fetches the full machine set from the security catalog. Cost is
// one resource unit per page request.
type Reader struct {
	endpoint string
	pageSize int
	fetcher  PageFetcher
	logger   logger.Logger
}

// NewReader creates a Reader with the default bearer-authenticated fetcher.
func NewReader(endpoint string, pageSize int, tokens azauth.TokenProvider, httpClient azauth.HTTPClient, log logger.Logger) *Reader {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	return &Reader{
		endpoint: endpoint,
		pageSize: pageSize,
		fetcher:  newHTTPFetcher(tokens, httpClient),
		logger:   log,
	}
}

// NewReaderWithFetcher creates a Reader over a custom page fetcher.
func NewReaderWithFetcher(endpoint string, pageSize int, fetcher PageFetcher, log logger.Logger) *Reader {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	return &Reader{
		endpoint: endpoint,
		pageSize: pageSize,
		fetcher:  fetcher,
		logger:   log,
	}
}

// FetchAll pages through the machines endpoint until exhausted.
func (r *Reader) FetchAll(ctx context.Context) ([]models.DefenderDevice, float64, error) {
	machines := make([]models.DefenderDevice, 0)
	pageURL := fmt.Sprintf("%s/api/machines?$top=%d", r.endpoint, r.pageSize)

	var cost float64

	for pageURL != "" {
		page, err := r.fetcher.FetchPage(ctx, pageURL)
		if err != nil {
			return nil, cost, fmt.Errorf("fetch machines page: %w", err)
		}

		cost++

		machines = append(machines, page.Value...)
		pageURL = page.NextLink
	}

	r.logger.Info().
		Int("machines", len(machines)).
		Float64("cost", cost).
		Msg("Fetched machines from Defender")

	return machines, cost, nil
}

type httpFetcher struct {
	tokens     azauth.TokenProvider
	httpClient azauth.HTTPClient
}

func newHTTPFetcher(tokens azauth.TokenProvider, httpClient azauth.HTTPClient) *httpFetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &httpFetcher{tokens: tokens, httpClient: httpClient}
}

func (f *httpFetcher) FetchPage(ctx context.Context, pageURL string) (*machinesPage, error) {
	accessToken, err := f.tokens.GetAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: %d, response: %s", errUnexpectedStatusCode,
			resp.StatusCode, string(bodyBytes))
	}

	var page machinesPage

	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &page, nil
}
