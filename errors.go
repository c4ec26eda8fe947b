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

import "github.com/juju/errors"

// Token failures.  Every error returned by Verify, Authenticate and the
// unverified accessors matches exactly one of these with errors.Is.
const (
	// ErrMalformedToken is returned when the token is not a compact
	// three segment JWS, a segment is not valid base64url or JSON, or
	// a required claim is missing.
	ErrMalformedToken = errors.ConstError("malformed token")

	// ErrWeakKey is returned when the configured secret is shorter than
	// the signature algorithm allows.  This is an operator error.
	ErrWeakKey = errors.ConstError("secret too short for signature algorithm")

	// ErrSignatureInvalid is returned when the signature does not verify
	// with the configured secret and algorithm.
	ErrSignatureInvalid = errors.ConstError("token signature invalid")

	// ErrExpired is returned when the current time is at or after "exp".
	ErrExpired = errors.ConstError("token expired")

	// ErrDeserialization is returned when the credential claim is absent
	// or does not fit the requested credential type.
	ErrDeserialization = errors.ConstError("credential claim cannot be decoded")
)

// Construction and usage failures.
const (
	ErrInvalidConfig     = errors.ConstError("invalid provider configuration")
	ErrInvalidExpiry     = errors.ConstError("expiry must be positive")
	ErrInvalidCredential = errors.ConstError("credential must not be nil")
	ErrUnknownPurpose    = errors.ConstError("purpose not found in registry")
)

// markError annotates cause with kind's message and makes it match kind
// under errors.Is, keeping cause in the chain.
func markError(kind errors.ConstError, cause error) error {
	return errors.WithType(errors.Annotate(cause, string(kind)), kind)
}
