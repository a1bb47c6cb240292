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

package handlername

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type userHandler struct{}

func (*userHandler) Get(http.ResponseWriter, *http.Request) {}

type statusHandler struct{}

func (statusHandler) ServeHTTP(http.ResponseWriter, *http.Request) {}

func listUsers(http.ResponseWriter, *http.Request) {}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		target string
		op     string
	}{
		{in: "github.com/acme/app/api.(*UserHandler).Get-fm", target: "UserHandler", op: "Get"},
		{in: "github.com/acme/app/api.UserHandler.List-fm", target: "UserHandler", op: "List"},
		{in: "main.listUsers", target: "main", op: "listUsers"},
		{in: "main.main.func1", target: "main", op: "main.func1"},
		{in: "github.com/acme/app/api.(*Store[...]).Find", target: "Store", op: "Find"},
		{in: "orphan", target: "", op: "orphan"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			target, op := Parse(tt.in)
			assert.Equal(t, tt.target, target)
			assert.Equal(t, tt.op, op)
		})
	}
}

func TestFromFunc(t *testing.T) {
	t.Parallel()

	h := &userHandler{}
	target, op := FromFunc(h.Get)
	assert.Equal(t, "userHandler", target)
	assert.Equal(t, "Get", op)

	target, op = FromFunc(listUsers)
	assert.Equal(t, "handlername", target)
	assert.Equal(t, "listUsers", op)

	target, op = FromFunc("not a func")
	assert.Empty(t, target)
	assert.Empty(t, op)
}

func TestFromHandler(t *testing.T) {
	t.Parallel()

	target, op := FromHandler(http.HandlerFunc(listUsers))
	assert.Equal(t, "handlername", target)
	assert.Equal(t, "listUsers", op)

	target, op = FromHandler(statusHandler{})
	assert.Equal(t, "statusHandler", target)
	assert.Equal(t, "ServeHTTP", op)

	target, op = FromHandler(nil)
	assert.Empty(t, target)
	assert.Empty(t, op)
}
