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

// Credential is any principal that can be embedded in a token.
//
// The whole value is run through the provider's Codec and stored under
// the credential claim, so a concrete type must carry its subject and
// authorities in its encoded form (exported fields with json tags) for
// them to survive the round trip.
type Credential interface {
	// Subject names the principal.  It becomes the "sub" claim.
	Subject() string
	// Authorities lists roles or permissions.  Order is not significant.
	Authorities() []string
}

// HasAuthority reports whether c carries the named authority.
func HasAuthority(c Credential, authority string) bool {
	if c == nil {
		return false
	}
	for _, a := range c.Authorities() {
		if a == authority {
			return true
		}
	}
	return false
}
