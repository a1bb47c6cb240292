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

package trigger

import (
	"context"
	"strings"

	"rivaas.dev/apilog/model"
)

// Defaults returns the built-in triggers in their evaluation order.
func Defaults() []Trigger {
	return []Trigger{Exception{}, Header{}, StatusCode{}}
}

// Exception fires when the handler failed.
type Exception struct{}

func (Exception) Name() string { return model.TriggerException }

func (Exception) ShouldEscalate(_ context.Context, in Input) (bool, error) {
	return in.Err != nil, nil
}

// Header fires when the configured header carries the detailed value,
// compared case-insensitively.
type Header struct{}

func (Header) Name() string { return model.TriggerHeader }

func (Header) ShouldEscalate(_ context.Context, in Input) (bool, error) {
	if in.Settings == nil || in.Invocation == nil || in.Invocation.Request == nil {
		return false, nil
	}
	cfg := in.Settings.HeaderTrigger
	if cfg.HeaderName == "" || cfg.DetailedValue == "" {
		return false, nil
	}
	v := strings.TrimSpace(model.FirstHeader(in.Invocation.Request, cfg.HeaderName))

	return v != "" && strings.EqualFold(v, cfg.DetailedValue), nil
}

// StatusCode fires when the call's status is listed in
// detailed_log_on_status_codes. The status comes from a status-carrying
// result stored in the scope, else from the live response.
type StatusCode struct{}

func (StatusCode) Name() string { return model.TriggerStatusCode }

func (StatusCode) ShouldEscalate(_ context.Context, in Input) (bool, error) {
	if in.Settings == nil {
		return false, nil
	}

	if in.Scope != nil {
		if code, ok := model.CarriedStatus(in.Scope.Result()); ok {
			return in.Settings.DetailedOnStatus(code), nil
		}
	}
	if in.Invocation != nil && in.Invocation.Response != nil {
		if code := in.Invocation.Response.Status(); code > 0 {
			return in.Settings.DetailedOnStatus(code), nil
		}
	}

	return false, nil
}
