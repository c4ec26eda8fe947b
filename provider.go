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
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var logger = loggo.GetLogger("jwtprovider")

// minKeyLength is the shortest secret, in bytes, accepted for each
// supported algorithm: at least as long as the hash output.
var minKeyLength = map[jwa.SignatureAlgorithm]int{
	jwa.HS256: 32,
	jwa.HS384: 48,
	jwa.HS512: 64,
}

var registeredClaims = map[string]struct{}{
	jwt.SubjectKey:    {},
	jwt.IssuedAtKey:   {},
	jwt.ExpirationKey: {},
	jwt.NotBeforeKey:  {},
	jwt.IssuerKey:     {},
	jwt.AudienceKey:   {},
	jwt.JwtIDKey:      {},
}

type config struct {
	secret             []byte
	defaultExpiry      time.Duration
	credentialClaimKey string
	algorithm          jwa.SignatureAlgorithm
	headerName         string
	headerPrefix       string
	clock              Clock
	codec              Codec
}

func (c *config) validate() error {
	if len(c.secret) == 0 {
		return errors.Annotate(ErrInvalidConfig, "secret must be provided")
	}
	if c.defaultExpiry <= 0 {
		return errors.Annotatef(ErrInvalidConfig, "default expiry %v is not positive", c.defaultExpiry)
	}
	if c.credentialClaimKey == "" {
		return errors.Annotate(ErrInvalidConfig, "credential claim key must be provided")
	}
	if _, reserved := registeredClaims[c.credentialClaimKey]; reserved {
		return errors.Annotatef(ErrInvalidConfig, "credential claim key %q is a registered claim", c.credentialClaimKey)
	}
	if _, ok := minKeyLength[c.algorithm]; !ok {
		return errors.Annotatef(ErrInvalidConfig, "unsupported signature algorithm %q", c.algorithm)
	}
	if c.codec == nil {
		return errors.Annotate(ErrInvalidConfig, "codec must not be nil")
	}
	return nil
}

func (c *config) weakKey() bool {
	return len(c.secret) < minKeyLength[c.algorithm]
}

// ParseSignatureAlgorithm maps an algorithm name such as "HS256" to one
// of the supported HMAC algorithms.
func ParseSignatureAlgorithm(name string) (jwa.SignatureAlgorithm, error) {
	for alg := range minKeyLength {
		if strings.EqualFold(alg.String(), name) {
			return alg, nil
		}
	}
	return "", errors.Annotatef(ErrInvalidConfig, "unsupported signature algorithm %q", name)
}

// Provider issues and verifies tokens for a single secret.
//
// Once created, a Provider is immutable and safe for concurrent use.
// To change its configuration, call With to derive a new one.
type Provider struct {
	cfg config
}

// New creates a Provider signing with secret.  Only the secret is
// required; everything else has a default that can be overridden
// with opts.
//
// A secret shorter than the algorithm's minimum is accepted, but every
// token checked by the resulting Provider fails with ErrWeakKey.
func New(secret []byte, opts ...Option) (*Provider, error) {
	c := config{
		secret:             append([]byte(nil), secret...),
		defaultExpiry:      DefaultExpiry,
		credentialClaimKey: DefaultCredentialClaimKey,
		algorithm:          DefaultSignatureAlgorithm,
		headerName:         DefaultHeaderName,
		headerPrefix:       DefaultHeaderPrefix,
		clock:              clock.WallClock,
		codec:              JSONCodec{},
	}
	return newProvider(c, opts)
}

// With returns a new Provider with p's configuration plus opts.
// p itself is left untouched.
func (p *Provider) With(opts ...Option) (*Provider, error) {
	c := p.cfg
	c.secret = append([]byte(nil), p.cfg.secret...)
	return newProvider(c, opts)
}

func newProvider(c config, opts []Option) (*Provider, error) {
	for _, opt := range opts {
		opt(&c)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	if c.weakKey() {
		logger.Warningf("secret is %d bytes, %s needs at least %d; tokens will fail verification",
			len(c.secret), c.algorithm, minKeyLength[c.algorithm])
	}
	return &Provider{cfg: c}, nil
}

// Secret returns a copy of the signing secret.
func (p *Provider) Secret() []byte {
	return append([]byte(nil), p.cfg.secret...)
}

// DefaultExpiry is the lifetime given to tokens by Generate.
func (p *Provider) DefaultExpiry() time.Duration {
	return p.cfg.defaultExpiry
}

// CredentialClaimKey is the claim the credential is stored under.
func (p *Provider) CredentialClaimKey() string {
	return p.cfg.credentialClaimKey
}

// SignatureAlgorithm is the HMAC variant used to sign and verify.
func (p *Provider) SignatureAlgorithm() jwa.SignatureAlgorithm {
	return p.cfg.algorithm
}

// HeaderName is the HTTP header tokens are expected in.
func (p *Provider) HeaderName() string {
	return p.cfg.headerName
}

// HeaderPrefix precedes the token in the header value.
func (p *Provider) HeaderPrefix() string {
	return p.cfg.headerPrefix
}

// Generate issues a token for cred that expires after DefaultExpiry.
func (p *Provider) Generate(cred Credential) (string, error) {
	return p.GenerateWithExpiry(cred, p.cfg.defaultExpiry)
}

// GenerateWithExpiry issues a token for cred that expires after expiry.
//
// The subject ("sub") is cred.Subject(), inception ("iat") is the
// clock's Now(), and expiration ("exp") is inception plus expiry.  The
// encoded credential is stored under the credential claim key.
func (p *Provider) GenerateWithExpiry(cred Credential, expiry time.Duration) (string, error) {
	if cred == nil {
		return "", ErrInvalidCredential
	}
	if expiry <= 0 {
		return "", errors.Annotatef(ErrInvalidExpiry, "got %v", expiry)
	}

	encoded, err := p.cfg.codec.Marshal(cred)
	if err != nil {
		return "", errors.Annotate(err, "encoding credential")
	}

	now := nowFromClock(p.cfg.clock)
	t, err := jwt.NewBuilder().
		Subject(cred.Subject()).
		IssuedAt(now).
		Expiration(now.Add(expiry)).
		Claim(p.cfg.credentialClaimKey, json.RawMessage(encoded)).
		Build()
	if err != nil {
		return "", errors.Annotate(err, "building token")
	}

	signed, err := jwt.Sign(t, jwt.WithKey(p.cfg.algorithm, p.cfg.secret))
	if err != nil {
		return "", errors.Annotate(err, "signing token")
	}
	return string(signed), nil
}

// Verify checks that token was signed with this Provider's secret and
// algorithm and has not expired.  The returned error matches one of
// ErrMalformedToken, ErrWeakKey, ErrSignatureInvalid or ErrExpired.
func (p *Provider) Verify(token string) error {
	_, err := p.verify(token)
	return err
}

// Authenticate verifies token, then decodes its credential into dst and
// returns the subject.  This is the path to use for anything that
// grants access.
func (p *Provider) Authenticate(token string, dst Credential) (string, error) {
	pt, err := p.verify(token)
	if err != nil {
		return "", err
	}
	if err := p.decodeCredential(pt, dst); err != nil {
		return "", err
	}
	return pt.token.Subject(), nil
}

// CredentialOf is Authenticate for callers that want a freshly allocated
// credential of type T back.
//
//	user, err := jwtprovider.CredentialOf[User](provider, token)
func CredentialOf[T any, PT interface {
	*T
	Credential
}](p *Provider, token string) (PT, error) {
	var v T
	cred := PT(&v)
	if _, err := p.Authenticate(token, cred); err != nil {
		return nil, err
	}
	return cred, nil
}

// UnverifiedSubject returns the "sub" claim of token.
//
// Neither the signature nor the expiry is checked.  Use it to label log
// lines for tokens that may be forged or stale, never for access decisions.
func (p *Provider) UnverifiedSubject(token string) (string, error) {
	pt, err := p.parse(token)
	if err != nil {
		return "", err
	}
	return pt.token.Subject(), nil
}

// UnverifiedCredential decodes the credential claim of token into dst.
//
// Neither the signature nor the expiry is checked; see UnverifiedSubject.
func (p *Provider) UnverifiedCredential(token string, dst Credential) error {
	pt, err := p.parse(token)
	if err != nil {
		return err
	}
	return p.decodeCredential(pt, dst)
}

type parsedToken struct {
	token  jwt.Token
	claims map[string]json.RawMessage
}

// parse checks structure only.  The raw claims are kept so the
// credential can be decoded from its original bytes.
func (p *Provider) parse(token string) (*parsedToken, error) {
	if strings.Count(token, ".") != 2 {
		return nil, errors.Annotate(ErrMalformedToken, "expected three dot-separated segments")
	}
	raw := []byte(token)

	msg, err := jws.Parse(raw)
	if err != nil {
		return nil, markError(ErrMalformedToken, err)
	}

	var claims map[string]json.RawMessage
	if err := json.Unmarshal(msg.Payload(), &claims); err != nil {
		return nil, markError(ErrMalformedToken, errors.Annotate(err, "payload"))
	}

	t, err := jwt.ParseInsecure(raw)
	if err != nil {
		return nil, markError(ErrMalformedToken, err)
	}
	return &parsedToken{token: t, claims: claims}, nil
}

func (p *Provider) verify(token string) (*parsedToken, error) {
	pt, err := p.parse(token)
	if err != nil {
		logger.Debugf("rejecting token: %v", err)
		return nil, err
	}

	exp := pt.token.Expiration()
	if exp.IsZero() {
		logger.Debugf("rejecting token for %q: no expiration", pt.token.Subject())
		return nil, errors.Annotatef(ErrMalformedToken, "missing %q claim", jwt.ExpirationKey)
	}

	if p.cfg.weakKey() {
		return nil, errors.Annotatef(ErrWeakKey, "%s needs %d bytes, have %d",
			p.cfg.algorithm, minKeyLength[p.cfg.algorithm], len(p.cfg.secret))
	}

	if _, err := jws.Verify([]byte(token), jws.WithKey(p.cfg.algorithm, p.cfg.secret)); err != nil {
		logger.Debugf("rejecting token for %q: %v", pt.token.Subject(), err)
		return nil, markError(ErrSignatureInvalid, err)
	}

	now := nowFromClock(p.cfg.clock)
	if !now.Before(exp) {
		logger.Debugf("rejecting token for %q: expired at %v", pt.token.Subject(), exp)
		return nil, errors.Annotatef(ErrExpired, "at %v", exp.UTC())
	}
	return pt, nil
}

func (p *Provider) decodeCredential(pt *parsedToken, dst Credential) error {
	if dst == nil {
		return ErrInvalidCredential
	}
	raw, found := pt.claims[p.cfg.credentialClaimKey]
	if !found || string(raw) == "null" {
		return errors.Annotatef(ErrDeserialization, "claim %q not present", p.cfg.credentialClaimKey)
	}
	if err := p.cfg.codec.Unmarshal(raw, dst); err != nil {
		return markError(ErrDeserialization, err)
	}
	return nil
}
