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

package model

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Trigger names understood by the built-in trigger set.
const (
	TriggerException  = "exception"
	TriggerHeader     = "header"
	TriggerStatusCode = "statusCode"
)

// Settings is the process-wide configuration of the interceptor.
// It is loaded once and treated as read-only afterwards.
//
// The config tag names the key used by the config package, the json tag is
// the key used when the settings are validated against the JSON schema.
type Settings struct {
	Enabled          bool `config:"enabled" json:"enabled"`
	LogMode          Mode `config:"log_mode" json:"log_mode" validate:"oneof=SIMPLE DETAILED"`
	MaxPayloadLength int  `config:"max_payload_length" json:"max_payload_length" validate:"gte=-1"`

	Sensitive      SensitiveSettings      `config:"sensitive" json:"sensitive"`
	ExceptionStack ExceptionStackSettings `config:"exception_stack" json:"exception_stack"`

	Triggers      []string              `config:"triggers" json:"triggers" validate:"dive,required"`
	HeaderTrigger HeaderTriggerSettings `config:"header_trigger" json:"header_trigger"`

	DetailedLogOnStatusCodes       []int    `config:"detailed_log_on_status_codes" json:"detailed_log_on_status_codes" validate:"dive,gte=100,lte=599"`
	ForceDetailedLogPatterns       []string `config:"force_detailed_log_patterns" json:"force_detailed_log_patterns" validate:"dive,required"`
	ExcludedArgumentOnContentTypes []string `config:"excluded_argument_on_content_types" json:"excluded_argument_on_content_types"`

	Filters FilterSettings `config:"filters" json:"filters"`
}

// SensitiveSettings controls redaction of arguments and headers.
type SensitiveSettings struct {
	// ArgNames are matched exactly against argument names.
	ArgNames []string `config:"arg_names" json:"arg_names"`
	// RequestHeaders are matched case-insensitively against header names.
	RequestHeaders []string `config:"request_headers" json:"request_headers"`
	Mask           string   `config:"mask" json:"mask"`
}

// ExceptionStackSettings controls how much of an error's stack is logged.
type ExceptionStackSettings struct {
	Enabled       bool   `config:"enabled" json:"enabled"`
	PackagePrefix string `config:"package_prefix" json:"package_prefix"`
	MaxLines      int    `config:"max_lines" json:"max_lines" validate:"gte=0"`
}

// HeaderTriggerSettings configures the "header" trigger.
type HeaderTriggerSettings struct {
	HeaderName    string `config:"header_name" json:"header_name"`
	DetailedValue string `config:"detailed_value" json:"detailed_value"`
}

// FilterSettings declares the built-in filters. Every field is optional;
// an empty value leaves the corresponding filter out.
type FilterSettings struct {
	ExcludeURIPatterns  []string          `config:"exclude_uri_patterns" json:"exclude_uri_patterns" validate:"dive,required"`
	ExcludeHandlerTypes []string          `config:"exclude_handler_types" json:"exclude_handler_types"`
	ExcludeOperations   []string          `config:"exclude_operations" json:"exclude_operations"`
	ExcludeHeaders      map[string]string `config:"exclude_headers" json:"exclude_headers"`
	ErrorsOnly          bool              `config:"errors_only" json:"errors_only"`
	MinProcessingTime   time.Duration     `config:"min_processing_time" json:"min_processing_time" validate:"gte=0"`
	MaxProcessingTime   time.Duration     `config:"max_processing_time" json:"max_processing_time" validate:"gte=0"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Enabled:          false,
		LogMode:          Simple,
		MaxPayloadLength: 1024,
		Sensitive: SensitiveSettings{
			ArgNames:       []string{"password"},
			RequestHeaders: []string{"Authorization", "Token"},
			Mask:           "****",
		},
		ExceptionStack: ExceptionStackSettings{
			Enabled:  false,
			MaxLines: 20,
		},
		Triggers: []string{TriggerException, TriggerStatusCode},
		HeaderTrigger: HeaderTriggerSettings{
			HeaderName:    "X-Log-Mode",
			DetailedValue: string(Detailed),
		},
		DetailedLogOnStatusCodes:       []int{400, 401, 403, 404, 405, 500, 501, 502, 503, 504},
		ForceDetailedLogPatterns:       []string{},
		ExcludedArgumentOnContentTypes: []string{"application/octet-stream", "multipart/form-data"},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the settings for values the interceptor cannot work with.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed on %q (value %v)", ErrInvalidSettings, fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	f := s.Filters
	if f.MaxProcessingTime > 0 && f.MaxProcessingTime < f.MinProcessingTime {
		return fmt.Errorf("%w: filters.max_processing_time %s is below min_processing_time %s",
			ErrInvalidSettings, f.MaxProcessingTime, f.MinProcessingTime)
	}

	return nil
}

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	c := s
	c.Sensitive.ArgNames = slices.Clone(s.Sensitive.ArgNames)
	c.Sensitive.RequestHeaders = slices.Clone(s.Sensitive.RequestHeaders)
	c.Triggers = slices.Clone(s.Triggers)
	c.DetailedLogOnStatusCodes = slices.Clone(s.DetailedLogOnStatusCodes)
	c.ForceDetailedLogPatterns = slices.Clone(s.ForceDetailedLogPatterns)
	c.ExcludedArgumentOnContentTypes = slices.Clone(s.ExcludedArgumentOnContentTypes)
	c.Filters.ExcludeURIPatterns = slices.Clone(s.Filters.ExcludeURIPatterns)
	c.Filters.ExcludeHandlerTypes = slices.Clone(s.Filters.ExcludeHandlerTypes)
	c.Filters.ExcludeOperations = slices.Clone(s.Filters.ExcludeOperations)
	c.Filters.ExcludeHeaders = maps.Clone(s.Filters.ExcludeHeaders)

	return c
}

// TriggerEnabled reports whether the named trigger is in the allow-list.
func (s *Settings) TriggerEnabled(name string) bool {
	return slices.Contains(s.Triggers, name)
}

// SensitiveArg reports whether an argument with this name must be masked.
func (s *Settings) SensitiveArg(name string) bool {
	return slices.Contains(s.Sensitive.ArgNames, name)
}

// SensitiveHeader reports whether a header with this name must be masked.
func (s *Settings) SensitiveHeader(name string) bool {
	return slices.ContainsFunc(s.Sensitive.RequestHeaders, func(h string) bool {
		return strings.EqualFold(h, name)
	})
}

// DetailedOnStatus reports whether code forces the detailed mode.
func (s *Settings) DetailedOnStatus(code int) bool {
	return slices.Contains(s.DetailedLogOnStatusCodes, code)
}

// ExcludedContentType reports whether argument logging is disabled for
// requests of the given content type.
func (s *Settings) ExcludedContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	ct := strings.ToLower(contentType)

	return slices.ContainsFunc(s.ExcludedArgumentOnContentTypes, func(prefix string) bool {
		return prefix != "" && strings.HasPrefix(ct, strings.ToLower(prefix))
	})
}
