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

// Record is a finished log record handed to a sink.
// It is either a [*SimpleRecord] or a [*DetailedRecord].
type Record interface {
	// Base returns the fields shared by both variants.
	Base() *SimpleRecord
	// Mode returns the variant's log mode.
	Mode() Mode
}

// SimpleRecord is published for requests that stay in SIMPLE mode.
type SimpleRecord struct {
	LogMode            Mode   `json:"logMode" msgpack:"logMode"`
	ClientIP           string `json:"clientIp,omitempty" msgpack:"clientIp,omitempty"`
	RequestTimestampMs int64  `json:"requestTimestamp" msgpack:"requestTimestamp"`
	// URI is the request path; the query is only part of a detailed record.
	URI                 string `json:"uri,omitempty" msgpack:"uri,omitempty"`
	Handler             string `json:"handler,omitempty" msgpack:"handler,omitempty"`
	ProcessingTimeMs    int64  `json:"processingTimeMs" msgpack:"processingTimeMs"`
	StatusCode          int    `json:"statusCode,omitempty" msgpack:"statusCode,omitempty"`
	ErrorIndicator      string `json:"errorIndicator,omitempty" msgpack:"errorIndicator,omitempty"`
	ExceptionStacktrace string `json:"exceptionStacktrace,omitempty" msgpack:"exceptionStacktrace,omitempty"`
}

// Base implements [Record].
func (r *SimpleRecord) Base() *SimpleRecord { return r }

// Mode implements [Record].
func (r *SimpleRecord) Mode() Mode { return Simple }

// DetailedRecord is a [SimpleRecord] enriched with request and response
// content.
type DetailedRecord struct {
	SimpleRecord `msgpack:",inline"`

	RequestHeaders map[string]string `json:"requestHeaders,omitempty" msgpack:"requestHeaders,omitempty"`
	RequestQuery   string            `json:"requestQuery,omitempty" msgpack:"requestQuery,omitempty"`
	RequestParams  string            `json:"requestParams,omitempty" msgpack:"requestParams,omitempty"`
	ResponseData   string            `json:"responseData,omitempty" msgpack:"responseData,omitempty"`
}

// Base implements [Record].
func (r *DetailedRecord) Base() *SimpleRecord { return &r.SimpleRecord }

// Mode implements [Record].
func (r *DetailedRecord) Mode() Mode { return Detailed }

// Simplify drops the detailed fields.
func (r *DetailedRecord) Simplify() *SimpleRecord {
	s := r.SimpleRecord
	s.LogMode = Simple

	return &s
}
