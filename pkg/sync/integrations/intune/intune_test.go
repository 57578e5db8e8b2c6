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

package intune

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/devicesync/pkg/logger"
	"github.com/carverauto/devicesync/pkg/models"
)

type fakePageFetcher struct {
	pages map[string]*devicesPage
	err   error
	calls []string
}

func (f *fakePageFetcher) FetchPage(_ context.Context, pageURL string) (*devicesPage, error) {
	f.calls = append(f.calls, pageURL)

	if f.err != nil {
		return nil, f.err
	}

	page, ok := f.pages[pageURL]
	if !ok {
		return nil, fmt.Errorf("unexpected page url %q", pageURL)
	}

	return page, nil
}

type staticTokens struct{ token string }

func (s staticTokens) GetAccessToken(context.Context) (string, error) { return s.token, nil }

func TestFetchAllFollowsNextLinks(t *testing.T) {
	first := "https://graph.example.com/deviceManagement/managedDevices?$top=2"
	second := "https://graph.example.com/deviceManagement/managedDevices?$top=2&$skiptoken=abc"

	fetcher := &fakePageFetcher{pages: map[string]*devicesPage{
		first: {
			Value: []models.IntuneDevice{
				{DeviceID: "d1", AzureADDeviceID: "K1"},
				{DeviceID: "d2", AzureADDeviceID: "K2"},
			},
			NextLink: second,
		},
		second: {
			Value: []models.IntuneDevice{{DeviceID: "d3", AzureADDeviceID: "K3"}},
		},
	}}

	r := NewReaderWithFetcher("https://graph.example.com", 2, fetcher, logger.NewTestLogger())

	devices, cost, err := r.FetchAll(context.Background())
	require.NoError(t, err)

	require.Len(t, devices, 3)
	assert.Equal(t, "d1", devices[0].DeviceID)
	assert.Equal(t, "d3", devices[2].DeviceID)
	assert.InDelta(t, 2.0, cost, 0.001, "one resource unit per page")
	assert.Equal(t, []string{first, second}, fetcher.calls)
}

func TestFetchAllEmptyCatalog(t *testing.T) {
	start := "https://graph.example.com/deviceManagement/managedDevices?$top=100"
	fetcher := &fakePageFetcher{pages: map[string]*devicesPage{
		start: {Value: nil},
	}}

	r := NewReaderWithFetcher("https://graph.example.com", 0, fetcher, logger.NewTestLogger())

	devices, cost, err := r.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, devices)
	assert.InDelta(t, 1.0, cost, 0.001)
}

func TestFetchAllPropagatesPageError(t *testing.T) {
	pageErr := errors.New("503 service unavailable")
	fetcher := &fakePageFetcher{err: pageErr}

	r := NewReaderWithFetcher("https://graph.example.com", 100, fetcher, logger.NewTestLogger())

	devices, cost, err := r.FetchAll(context.Background())
	require.ErrorIs(t, err, pageErr)
	assert.Nil(t, devices)
	assert.Zero(t, cost, "the failed page is not billed")
}

func TestHTTPFetcherSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		_, _ = w.Write([]byte(`{"value":[{"id":"d1","azureADDeviceId":"K1"}]}`))
	}))
	defer srv.Close()

	f := newHTTPFetcher(staticTokens{token: "tok-123"}, srv.Client())

	page, err := f.FetchPage(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, page.Value, 1)
	assert.Equal(t, "d1", page.Value[0].DeviceID)
}

func TestHTTPFetcherRejectsNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"throttled"}`))
	}))
	defer srv.Close()

	f := newHTTPFetcher(staticTokens{token: "tok"}, srv.Client())

	_, err := f.FetchPage(context.Background(), srv.URL)
	require.ErrorIs(t, err, errUnexpectedStatusCode)
	assert.True(t, models.IsThrottled(err), "429 responses look throttled to the run-level retry")
}
