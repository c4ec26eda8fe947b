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
	"sync"

	"github.com/juju/errors"
)

var (
	registry = map[string]*Provider{}
	lock     sync.RWMutex
)

// Register stores p in the globally available registry under the
// provided named purpose, replacing any Provider already there.
//
// Providers are immutable, so a registered Provider may be used from
// many goroutines.  To change a purpose's configuration, register a
// new Provider derived with With.
func Register(purpose string, p *Provider) error {
	if len(purpose) == 0 {
		return errors.New("purpose must be provided")
	}
	if p == nil {
		return errors.New("provider must be provided")
	}

	lock.Lock()
	defer lock.Unlock()
	registry[purpose] = p
	return nil
}

// Lookup returns the Provider registered for purpose.
func Lookup(purpose string) (p *Provider, found bool) {
	lock.RLock()
	defer lock.RUnlock()
	p, found = registry[purpose]
	return
}

// Delete deletes a named Provider from the registry.
func Delete(purpose string) {
	lock.Lock()
	defer lock.Unlock()
	delete(registry, purpose)
}

// Clear will erase all entries from the registry.
func Clear() {
	lock.Lock()
	defer lock.Unlock()
	for k := range registry {
		delete(registry, k)
	}
}

func mustLookup(purpose string) (*Provider, error) {
	p, found := Lookup(purpose)
	if !found {
		return nil, errors.Annotatef(ErrUnknownPurpose, "%q", purpose)
	}
	return p, nil
}

// Sign issues a token for cred using the Provider registered for purpose.
func Sign(purpose string, cred Credential) (string, error) {
	p, err := mustLookup(purpose)
	if err != nil {
		return "", err
	}
	return p.Generate(cred)
}

// Validate authenticates token with the Provider registered for purpose,
// decoding the credential into dst.  The subject is returned.
func Validate(purpose string, token string, dst Credential) (string, error) {
	p, err := mustLookup(purpose)
	if err != nil {
		return "", err
	}
	return p.Authenticate(token, dst)
}
