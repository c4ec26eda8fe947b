/*
 * Copyright 2022 Michael Graff.
 *
 * Licensed under the Apache License, Version 2.0 (the "License")
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package httpauth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skandragon/jwtprovider"
)

const testSecret = "1234567890qwertyuiopasdfghjklzxcvbnm!@#$&*()"

type user struct {
	ID    uuid.UUID `json:"id"`
	Roles []string  `json:"authorities"`
}

func (u *user) Subject() string       { return u.ID.String() }
func (u *user) Authorities() []string { return u.Roles }

func newUser() jwtprovider.Credential { return &user{} }

func newRouter(p *jwtprovider.Provider) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(Authenticate(p, newUser))
	api.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		cred, ok := CredentialFromContext(r.Context())
		if !ok {
			http.Error(w, "no credential", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, cred.Subject())
	})

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(RequireAuthority("ROLE_ADMIN"))
	admin.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	})
	return r
}

func serve(h http.Handler, path, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate(t *testing.T) {
	clk := testclock.NewClock(time.Unix(1_700_000_000, 0))
	p, err := jwtprovider.New([]byte(testSecret), jwtprovider.WithClock(clk))
	require.NoError(t, err)
	router := newRouter(p)

	admin := &user{ID: uuid.New(), Roles: []string{"ROLE_ADMIN"}}
	customer := &user{ID: uuid.New(), Roles: []string{"ROLE_CUSTOMER"}}
	adminToken, err := p.Generate(admin)
	require.NoError(t, err)
	customerToken, err := p.Generate(customer)
	require.NoError(t, err)
	shortToken, err := p.GenerateWithExpiry(customer, time.Second)
	require.NoError(t, err)
	clk.Advance(time.Minute)

	other, err := p.With(jwtprovider.WithSecret([]byte("a different secret that is long enough")))
	require.NoError(t, err)
	forgedToken, err := other.Generate(admin)
	require.NoError(t, err)

	tests := []struct {
		name          string
		path          string
		header        string
		value         string
		wantStatus    int
		wantBody      string
		wantChallenge string
	}{
		{"no header", "/api/me", "", "", http.StatusUnauthorized, "", "Bearer"},
		{"wrong prefix", "/api/me", "Authorization", "Basic " + adminToken, http.StatusUnauthorized, "", "Bearer"},
		{"empty token", "/api/me", "Authorization", "Bearer ", http.StatusUnauthorized, "", "Bearer"},
		{"malformed", "/api/me", "Authorization", "Bearer 1234567890", http.StatusUnauthorized, "",
			`Bearer error="invalid_token", error_description="token malformed"`},
		{"expired", "/api/me", "Authorization", "Bearer " + shortToken, http.StatusUnauthorized, "",
			`Bearer error="invalid_token", error_description="token expired"`},
		{"forged", "/api/me", "Authorization", "Bearer " + forgedToken, http.StatusUnauthorized, "",
			`Bearer error="invalid_token", error_description="token invalid"`},
		{"valid", "/api/me", "Authorization", "Bearer " + customerToken, http.StatusOK, customer.ID.String(), ""},
		{"authority missing", "/api/admin/stats", "Authorization", "Bearer " + customerToken, http.StatusForbidden, "", ""},
		{"authority present", "/api/admin/stats", "Authorization", "Bearer " + adminToken, http.StatusOK, "ok", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, tt.path, tt.header, tt.value)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
			assert.Equal(t, tt.wantChallenge, rec.Header().Get("WWW-Authenticate"))
		})
	}
}

func TestAuthenticate_customHeader(t *testing.T) {
	p, err := jwtprovider.New([]byte(testSecret),
		jwtprovider.WithHeaderName("X-Auth-Token"),
		jwtprovider.WithHeaderPrefix(""))
	require.NoError(t, err)
	router := newRouter(p)

	u := &user{ID: uuid.New()}
	token, err := p.Generate(u)
	require.NoError(t, err)

	rec := serve(router, "/api/me", "X-Auth-Token", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, u.ID.String(), rec.Body.String())

	rec = serve(router, "/api/me", "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenFromRequest(t *testing.T) {
	p, err := jwtprovider.New([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{"bearer", "Bearer abc.def.ghi", "abc.def.ghi", false},
		{"trailing space", "Bearer abc.def.ghi ", "abc.def.ghi", false},
		{"missing", "", "", true},
		{"lowercase scheme", "bearer abc.def.ghi", "", true},
		{"prefix only", "Bearer ", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.value != "" {
				req.Header.Set("Authorization", tt.value)
			}
			got, err := TokenFromRequest(p, req)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMissingToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequireAuthority_noCredential(t *testing.T) {
	h := RequireAuthority("ROLE_ADMIN")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))
	rec := serve(h, "/", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCredentialFromContext(t *testing.T) {
	_, ok := CredentialFromContext(context.Background())
	assert.False(t, ok)

	u := &user{ID: uuid.New()}
	got, ok := CredentialFromContext(WithCredential(context.Background(), u))
	require.True(t, ok)
	assert.Same(t, u, got)
}
