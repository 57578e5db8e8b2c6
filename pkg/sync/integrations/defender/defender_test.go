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

package defender

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
	pages map[string]*machinesPage
	err   error
	calls []string
}

func (f *fakePageFetcher) FetchPage(_ context.Context, pageURL string) (*machinesPage, error) {
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
	first := "https://defender.example.com/api/machines?$top=2"
	second := "https://defender.example.com/api/machines?$top=2&$skip=2"

	fetcher := &fakePageFetcher{pages: map[string]*machinesPage{
		first: {
			Value: []models.DefenderDevice{
				{MachineID: "m1", AADDeviceID: "K1"},
				{MachineID: "m2"},
			},
			NextLink: second,
		},
		second: {
			Value: []models.DefenderDevice{{MachineID: "m3", AADDeviceID: "K3"}},
		},
	}}

	r := NewReaderWithFetcher("https://defender.example.com", 2, fetcher, logger.NewTestLogger())

	machines, cost, err := r.FetchAll(context.Background())
	require.NoError(t, err)

	require.Len(t, machines, 3)
	assert.Equal(t, "m1", machines[0].MachineID)
	assert.Empty(t, machines[1].AADDeviceID, "machines without a directory id pass through untouched")
	assert.InDelta(t, 2.0, cost, 0.001)
	assert.Equal(t, []string{first, second}, fetcher.calls)
}

func TestFetchAllPropagatesPageError(t *testing.T) {
	pageErr := errors.New("gateway timeout")
	fetcher := &fakePageFetcher{err: pageErr}

	r := NewReaderWithFetcher("https://defender.example.com", 100, fetcher, logger.NewTestLogger())

	machines, _, err := r.FetchAll(context.Background())
	require.ErrorIs(t, err, pageErr)
	assert.Nil(t, machines)
}

func TestHTTPFetcherSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-456", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`{"value":[{"id":"m1","aadDeviceId":"K1","computerDnsName":"host-1"}]}`))
	}))
	defer srv.Close()

	f := newHTTPFetcher(staticTokens{token: "tok-456"}, srv.Client())

	page, err := f.FetchPage(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, page.Value, 1)
	assert.Equal(t, "m1", page.Value[0].MachineID)
	assert.Equal(t, "host-1", page.Value[0].DNSName)
}

func TestHTTPFetcherRejectsNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := newHTTPFetcher(staticTokens{token: "tok"}, srv.Client())

	_, err := f.FetchPage(context.Background(), srv.URL)
	require.ErrorIs(t, err, errUnexpectedStatusCode)
}
