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

// Package httpauth carries jwtprovider tokens over HTTP, using the
// provider's header name and prefix.  The middleware here is plain
// func(http.Handler) http.Handler and can be passed to gorilla/mux
// Router.Use directly.
package httpauth

import (
	"context"
	"net/http"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/skandragon/jwtprovider"
)

var logger = loggo.GetLogger("jwtprovider.httpauth")

// ErrMissingToken is returned when the request has no token in the
// provider's header, or the header lacks the expected prefix.
const ErrMissingToken = errors.ConstError("missing token")

type credentialContextKey struct{}

// WithCredential returns a copy of ctx carrying cred.
func WithCredential(ctx context.Context, cred jwtprovider.Credential) context.Context {
	return context.WithValue(ctx, credentialContextKey{}, cred)
}

// CredentialFromContext returns the credential stored by Authenticate.
func CredentialFromContext(ctx context.Context) (jwtprovider.Credential, bool) {
	cred, ok := ctx.Value(credentialContextKey{}).(jwtprovider.Credential)
	return cred, ok
}

// TokenFromRequest extracts the token from the header named by
// p.HeaderName(), stripping p.HeaderPrefix().
func TokenFromRequest(p *jwtprovider.Provider, r *http.Request) (string, error) {
	value := r.Header.Get(p.HeaderName())
	if value == "" {
		return "", errors.Annotatef(ErrMissingToken, "no %s header", p.HeaderName())
	}
	prefix := p.HeaderPrefix()
	if !strings.HasPrefix(value, prefix) {
		return "", errors.Annotatef(ErrMissingToken, "%s header does not start with %q", p.HeaderName(), prefix)
	}
	token := strings.TrimSpace(value[len(prefix):])
	if token == "" {
		return "", errors.Annotate(ErrMissingToken, "empty token")
	}
	return token, nil
}

// Authenticate returns middleware that verifies the request's token and
// decodes its credential into a value obtained from newCredential, then
// stores it in the request context.  Requests without a valid token get
// 401 Unauthorized.
func Authenticate(p *jwtprovider.Provider, newCredential func() jwtprovider.Credential) func(http.Handler) http.Handler {
	if p == nil {
		panic("httpauth: provider is required")
	}
	if newCredential == nil {
		panic("httpauth: credential factory is required")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := TokenFromRequest(p, r)
			if err != nil {
				logger.Debugf("%s %s: %v", r.Method, r.URL.Path, err)
				unauthorized(w, "")
				return
			}

			cred := newCredential()
			if _, err := p.Authenticate(token, cred); err != nil {
				logger.Debugf("%s %s: %v", r.Method, r.URL.Path, err)
				if errors.Is(err, jwtprovider.ErrWeakKey) {
					logger.Errorf("token provider misconfigured: %v", err)
				}
				unauthorized(w, describe(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCredential(r.Context(), cred)))
		})
	}
}

// RequireAuthority returns middleware that replies 403 Forbidden unless
// the credential stored by Authenticate carries authority.  Without any
// credential it replies 401.
func RequireAuthority(authority string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cred, ok := CredentialFromContext(r.Context())
			if !ok {
				unauthorized(w, "")
				return
			}
			if !jwtprovider.HasAuthority(cred, authority) {
				logger.Debugf("%q lacks %q for %s %s", cred.Subject(), authority, r.Method, r.URL.Path)
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func describe(err error) string {
	switch {
	case errors.Is(err, jwtprovider.ErrExpired):
		return "token expired"
	case errors.Is(err, jwtprovider.ErrMalformedToken):
		return "token malformed"
	default:
		return "token invalid"
	}
}

func unauthorized(w http.ResponseWriter, description string) {
	challenge := `Bearer`
	if description != "" {
		challenge = `Bearer error="invalid_token", error_description="` + description + `"`
	}
	w.Header().Set("WWW-Authenticate", challenge)
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
}
