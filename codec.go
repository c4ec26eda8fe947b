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
	"bytes"

	"github.com/goccy/go-json"
)

// Codec converts credentials to and from the bytes embedded in the
// credential claim.
type Codec interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

// JSONCodec is the default Codec.
//
// Unknown fields are ignored on decode unless DisallowUnknownFields is
// set, so older and newer credential shapes can read each other's tokens.
// time.Time values are written as RFC 3339 strings.  Fields that should
// be left out when empty need an `omitempty` tag.
type JSONCodec struct {
	DisallowUnknownFields bool
}

// Marshal encodes v as JSON.
func (c JSONCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes data into v.
func (c JSONCodec) Unmarshal(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if c.DisallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	return dec.Decode(v)
}
