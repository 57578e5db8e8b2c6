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

// Package azauth obtains and caches directory access tokens for the catalog
// APIs using the client-credentials grant.
package azauth

import (
	"context"
	"net/http"
	"time"
)

// TokenProvider obtains an access token for catalog API calls.
type TokenProvider interface {
	GetAccessToken(ctx context.Context) (string, error)
}

// CredentialSource fetches a fresh token along with its reported lifetime.
type CredentialSource interface {
	FetchToken(ctx context.Context) (token string, lifetime time.Duration, err error)
}

// HTTPClient is the subset of http.Client the providers need.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Clock supplies the current time; injected so expiry handling is testable.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
