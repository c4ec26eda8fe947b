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
	"testing"
	"time"

	"github.com/juju/clock/testclock"
)

func timeEqualsEpsilon(want time.Time, got time.Time, fudge time.Duration) bool {
	return !got.Before(want.Add(-fudge)) && !got.After(want.Add(fudge))
}

func Test_nowFromClock(t *testing.T) {
	tests := []struct {
		name  string
		clock Clock
		want  time.Time
	}{
		{"nil", nil, time.Now()},
		{"fixed at 50", FixedClock(time.Unix(50, 0)), time.Unix(50, 0)},
		{"test clock", testclock.NewClock(time.Unix(1111, 0)), time.Unix(1111, 0)},
		{"func", ClockFunc(func() time.Time { return time.Unix(2222, 0) }), time.Unix(2222, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nowFromClock(tt.clock)
			if !timeEqualsEpsilon(tt.want, got, 1*time.Second) {
				t.Errorf("nowFromClock() = %v, want %v", got, tt.want)
			}
		})
	}
}
