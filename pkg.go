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

// Package jwtprovider issues and verifies HMAC signed JWTs that carry
// an application defined credential, so a service can recover who a
// caller is and what they may do from the token alone, without a
// session store.
//
// A Provider holds one secret and its settings.  Generate embeds any
// Credential under a single claim ("credential" by default) next to
// "sub", "iat" and "exp".  Authenticate checks the signature and expiry
// and decodes the credential back into a concrete type:
//
//	p, err := jwtprovider.New(secret)
//	token, err := p.Generate(user)
//	...
//	var u User
//	subject, err := p.Authenticate(token, &u)
//
// Failures can be told apart with errors.Is: ErrExpired means the
// client should log in again, ErrMalformedToken and ErrSignatureInvalid
// mean the token is broken or forged, and ErrWeakKey means the
// Provider's secret is too short for its algorithm.
//
// UnverifiedSubject and UnverifiedCredential read a token without
// checking it.  They are meant for logging and debugging only.
//
// Providers can also be kept in a process wide registry keyed by
// purpose, so code deep in a call stack can Sign and Validate by name.
package jwtprovider
