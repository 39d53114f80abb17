// Copyright 2023 Hedgehog
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

// Package metadata declares and validates the configuration fields a vendor
// model instance is created with.
package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

var (
	ErrMissingMetadata = errors.New("metadata: missing")
	ErrInvalidMetadata = errors.New("metadata: invalid")
	ErrUserCancelled   = errors.New("metadata: cancelled by user")
)

func missingMetadataError(key string) error {
	return fmt.Errorf("%w: field '%s' is required", ErrMissingMetadata, key)
}

func invalidMetadataError(key string, err error) error {
	return fmt.Errorf("%w: field '%s': %w", ErrInvalidMetadata, key, err)
}

// Field declares one configuration field of a vendor model
type Field struct {
	Key         string `json:"key" yaml:"key"`
	Default     string `json:"default" yaml:"default"`
	Example     string `json:"example" yaml:"example"`
	Required    bool   `json:"required" yaml:"required"`
	Description string `json:"description" yaml:"description"`

	// JSONEncoded fields carry a JSON object. String input is parsed.
	JSONEncoded bool `json:"json_encoded" yaml:"json_encoded"`

	// Boolean fields accept anything strconv.ParseBool accepts
	Boolean bool `json:"boolean" yaml:"boolean"`
}

// Spec is the ordered list of fields of a vendor model
type Spec []Field

// Values holds parsed field values by key. JSON encoded fields are
// map[string]any, boolean fields are bool and all others are string.
type Values map[string]any

// Keys returns the keys of all set values sorted
func (v Values) Keys() []string {
	ret := make([]string, 0, len(v))
	for k := range v {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Field returns the field with key `key`
func (s Spec) Field(key string) (Field, bool) {
	for _, f := range s {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Apply validates a complete set of provided values. A supplied value is
// parsed, otherwise a non-empty default is applied, otherwise a required
// field fails with ErrMissingMetadata. Keys which are not part of the spec
// are ignored.
func (s Spec) Apply(provided map[string]any) (Values, error) {
	ret := make(Values, len(s))
	for _, f := range s {
		v, ok := provided[f.Key]
		if ok && v != nil {
			parsed, err := f.Parse(v)
			if err != nil {
				return nil, err
			}
			ret[f.Key] = parsed
			continue
		}
		if f.Default != "" {
			parsed, err := f.Parse(f.Default)
			if err != nil {
				return nil, err
			}
			ret[f.Key] = parsed
			continue
		}
		if f.Required {
			return nil, missingMetadataError(f.Key)
		}
	}
	return ret, nil
}

// Update validates only the values in `provided`. No defaults are applied and
// no field is required.
func (s Spec) Update(provided map[string]any) (Values, error) {
	ret := make(Values, len(provided))
	for _, f := range s {
		v, ok := provided[f.Key]
		if !ok {
			continue
		}
		if v == nil {
			if f.Required {
				return nil, missingMetadataError(f.Key)
			}
			continue
		}
		parsed, err := f.Parse(v)
		if err != nil {
			return nil, err
		}
		ret[f.Key] = parsed
	}
	return ret, nil
}

// Parse converts `v` into the representation of the field
func (f Field) Parse(v any) (any, error) {
	switch {
	case f.JSONEncoded:
		return parseObject(f.Key, v)
	case f.Boolean:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			ret, err := strconv.ParseBool(b)
			if err != nil {
				return nil, invalidMetadataError(f.Key, err)
			}
			return ret, nil
		default:
			return nil, invalidMetadataError(f.Key, fmt.Errorf("expected boolean, got %T", v))
		}
	default:
		switch s := v.(type) {
		case string:
			return s, nil
		case fmt.Stringer:
			return s.String(), nil
		case bool, float64, int, int64:
			return fmt.Sprint(s), nil
		default:
			return nil, invalidMetadataError(f.Key, fmt.Errorf("expected string, got %T", v))
		}
	}
}

func parseObject(key string, v any) (map[string]any, error) {
	switch o := v.(type) {
	case map[string]any:
		return o, nil
	case string:
		var ret map[string]any
		if err := json.Unmarshal([]byte(o), &ret); err != nil {
			return nil, invalidMetadataError(key, err)
		}
		if ret == nil {
			return nil, invalidMetadataError(key, errors.New("expected a JSON object"))
		}
		return ret, nil
	case []byte:
		return parseObject(key, string(o))
	default:
		return nil, invalidMetadataError(key, fmt.Errorf("expected a JSON object, got %T", v))
	}
}
