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

package jwtprovider

import (
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
)

// Defaults applied by New when the matching option is not given.
const (
	DefaultExpiry             = time.Hour
	DefaultCredentialClaimKey = "credential"
	DefaultHeaderName         = "Authorization"
	DefaultHeaderPrefix       = "Bearer "

	// DefaultSignatureAlgorithm is used when WithSignatureAlgorithm is not given.
	DefaultSignatureAlgorithm = jwa.HS256
)

// Option specifies non-default overrides at
// creation time.
type Option func(*config)

// WithSecret replaces the signing secret.  New takes the secret as an
// argument; this is mostly useful with Provider.With.  The bytes are
// copied.
func WithSecret(secret []byte) Option {
	return func(c *config) {
		c.secret = append([]byte(nil), secret...)
	}
}

// WithDefaultExpiry sets the lifetime of tokens produced by Generate.
// It must be positive.
func WithDefaultExpiry(d time.Duration) Option {
	return func(c *config) {
		c.defaultExpiry = d
	}
}

// WithCredentialClaimKey names the claim the credential is stored under.
// It must not be empty or one of the registered JWT claim names.
func WithCredentialClaimKey(key string) Option {
	return func(c *config) {
		c.credentialClaimKey = key
	}
}

// WithSignatureAlgorithm selects the HMAC variant.  Only HS256, HS384
// and HS512 are accepted.
func WithSignatureAlgorithm(alg jwa.SignatureAlgorithm) Option {
	return func(c *config) {
		c.algorithm = alg
	}
}

// WithHeaderName sets the HTTP header tokens are carried in.  The core
// never reads it; see package httpauth.
func WithHeaderName(name string) Option {
	return func(c *config) {
		c.headerName = name
	}
}

// WithHeaderPrefix sets the scheme prefix that precedes the token in the
// header, including any trailing space.
func WithHeaderPrefix(prefix string) Option {
	return func(c *config) {
		c.headerPrefix = prefix
	}
}

// WithClock overrides the time source.  A nil clock means the wall clock.
func WithClock(clock Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithCodec overrides how credentials are encoded into the claim.
func WithCodec(codec Codec) Option {
	return func(c *config) {
		c.codec = codec
	}
}
