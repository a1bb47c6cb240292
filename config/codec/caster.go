// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package codec

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// CastType names the Go type a [CasterCodec] produces.
type CastType string

const (
	CastTypeBool        CastType = "bool"
	CastTypeInt         CastType = "int"
	CastTypeDuration    CastType = "duration"
	CastTypeString      CastType = "string"
	CastTypeStringSlice CastType = "string_slice"
	CastTypeIntSlice    CastType = "int_slice"
)

const (
	TypeCasterBool        Type = "caster-bool"
	TypeCasterInt         Type = "caster-int"
	TypeCasterDuration    Type = "caster-duration"
	TypeCasterString      Type = "caster-string"
	TypeCasterStringSlice Type = "caster-string-slice"
	TypeCasterIntSlice    Type = "caster-int-slice"
)

func init() {
	RegisterDecoder(TypeCasterBool, NewCaster(CastTypeBool))
	RegisterDecoder(TypeCasterInt, NewCaster(CastTypeInt))
	RegisterDecoder(TypeCasterDuration, NewCaster(CastTypeDuration))
	RegisterDecoder(TypeCasterString, NewCaster(CastTypeString))
	RegisterDecoder(TypeCasterStringSlice, NewCaster(CastTypeStringSlice))
	RegisterDecoder(TypeCasterIntSlice, NewCaster(CastTypeIntSlice))
}

// CasterCodec decodes a single scalar, or a comma-separated list, into
// the value pointed to by a *any.
type CasterCodec struct {
	castType CastType
}

// NewCaster creates a caster for castType.
func NewCaster(castType CastType) *CasterCodec {
	return &CasterCodec{castType: castType}
}

// Decode implements [Decoder].
func (c *CasterCodec) Decode(data []byte, v any) error {
	m, ok := v.(*any)
	if !ok {
		return fmt.Errorf("CasterCodec.Decode: expected *any, got %T", v)
	}
	value := strings.TrimSpace(string(data))

	var err error
	switch c.castType {
	case CastTypeBool:
		*m, err = cast.ToBoolE(value)
	case CastTypeInt:
		*m, err = cast.ToIntE(value)
	case CastTypeDuration:
		*m, err = cast.ToDurationE(value)
	case CastTypeString:
		*m = value
	case CastTypeStringSlice:
		*m = splitList(value)
	case CastTypeIntSlice:
		*m, err = cast.ToIntSliceE(splitList(value))
	default:
		err = fmt.Errorf("unknown cast type %q", c.castType)
	}

	return err
}

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}

	return parts
}
