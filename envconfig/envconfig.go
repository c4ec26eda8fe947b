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

// Package envconfig builds a jwtprovider.Provider from environment
// variables, optionally seeded from .env files.  The jwtprovider package
// itself never looks at the environment.
//
// With the default prefix the variables are:
//
//	JWT_SECRET                (required)
//	JWT_DEFAULT_EXPIRY        (default 1h)
//	JWT_CREDENTIAL_CLAIM_KEY  (default credential)
//	JWT_SIGNATURE_ALGORITHM   (default HS256)
//	JWT_HEADER_NAME           (default Authorization)
//	JWT_HEADER_PREFIX         (default "Bearer ")
package envconfig

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/juju/errors"

	"github.com/skandragon/jwtprovider"
)

// DefaultPrefix is prepended to every variable name when Load is given
// an empty prefix.
const DefaultPrefix = "JWT_"

// Config mirrors the provider's options.
type Config struct {
	Secret             string        `env:"SECRET,required,notEmpty"`
	DefaultExpiry      time.Duration `env:"DEFAULT_EXPIRY" envDefault:"1h"`
	CredentialClaimKey string        `env:"CREDENTIAL_CLAIM_KEY" envDefault:"credential"`
	SignatureAlgorithm string        `env:"SIGNATURE_ALGORITHM" envDefault:"HS256"`
	HeaderName         string        `env:"HEADER_NAME" envDefault:"Authorization"`
	HeaderPrefix       string        `env:"HEADER_PREFIX" envDefault:"Bearer "`
}

// Load reads Config from the environment.  Any files given are loaded
// first with godotenv; variables already set in the environment win.
func Load(prefix string, files ...string) (Config, error) {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return Config{}, errors.Annotate(err, "loading env files")
		}
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: prefix}); err != nil {
		return Config{}, errors.Annotate(err, "parsing token provider environment")
	}
	return cfg, nil
}

// Options converts cfg to provider options.  The secret is passed to
// jwtprovider.New separately and is not included.
func (cfg Config) Options() ([]jwtprovider.Option, error) {
	alg, err := jwtprovider.ParseSignatureAlgorithm(cfg.SignatureAlgorithm)
	if err != nil {
		return nil, err
	}
	return []jwtprovider.Option{
		jwtprovider.WithDefaultExpiry(cfg.DefaultExpiry),
		jwtprovider.WithCredentialClaimKey(cfg.CredentialClaimKey),
		jwtprovider.WithSignatureAlgorithm(alg),
		jwtprovider.WithHeaderName(cfg.HeaderName),
		jwtprovider.WithHeaderPrefix(cfg.HeaderPrefix),
	}, nil
}

// NewProvider creates a Provider from cfg, applying extra options last.
func NewProvider(cfg Config, extra ...jwtprovider.Option) (*jwtprovider.Provider, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return jwtprovider.New([]byte(cfg.Secret), append(opts, extra...)...)
}
