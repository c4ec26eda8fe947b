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

	"github.com/juju/clock"
)

// Clock supplies the 'current time' used when issuing and verifying
// tokens.  It is satisfied by clock.WallClock and testclock.Clock from
// github.com/juju/clock, as well as by the jwx jwt.Clock implementations.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to a Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time {
	return f()
}

// FixedClock returns a Clock locked to the given instant.
//
// This is included to help test expiration without sleeping.
func FixedClock(at time.Time) Clock {
	return ClockFunc(func() time.Time { return at })
}

func nowFromClock(c Clock) time.Time {
	if c == nil {
		return clock.WallClock.Now()
	}
	return c.Now()
}
