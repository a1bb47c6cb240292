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

package apilog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/apilog/model"
)

type createOrderRequest struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity,omitempty"`
	Password string `json:"password"`
	Internal string `json:"-"`
	Note     string
	secret   string
}

type orderService struct{}

var errOutOfStock = errors.New("out of stock")

func (orderService) Create(_ context.Context, req createOrderRequest) (order, error) {
	if req.Quantity > 10 {
		return order{}, errOutOfStock
	}

	return order{ID: 1, Total: "19.80"}, nil
}

func TestFunc(t *testing.T) {
	t.Parallel()

	ic, mem := newTestInterceptor(t, enabled(func(s *model.Settings) { s.LogMode = model.Detailed }))
	create := Func(ic, orderService{}.Create)

	got, err := create(t.Context(), createOrderRequest{SKU: "A-1", Quantity: 2, Password: "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, order{ID: 1, Total: "19.80"}, got)

	rec, ok := mem.Last().(*model.DetailedRecord)
	require.True(t, ok)
	assert.Equal(t, "orderService#Create", rec.Handler)
	assert.Equal(t, "unknown", rec.ClientIP)
	assert.Empty(t, rec.URI)
	assert.Equal(t, `{"id":1,"total":"19.80"}`, rec.ResponseData)

	var params map[string]any
	require.NoError(t, json.Unmarshal([]byte(rec.RequestParams), &params))
	assert.Equal(t, "A-1", params["sku"])
	assert.Equal(t, "****", params["password"])
	assert.NotContains(t, params, "Internal")
	assert.Contains(t, params, "Note")

	_, err = create(t.Context(), createOrderRequest{SKU: "A-1", Quantity: 11})
	require.ErrorIs(t, err, errOutOfStock)
	assert.Equal(t, "ERROR:errorString", mem.Last().Base().ErrorIndicator)
}

func TestArgsOf(t *testing.T) {
	t.Parallel()

	args := ArgsOf(&createOrderRequest{SKU: "B-2", secret: "x"})
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = a.Name
	}
	assert.Equal(t, []string{"sku", "quantity", "password", "Note"}, names)

	assert.Equal(t, []model.Arg{{Value: 42}}, ArgsOf(42))
	assert.Equal(t, []model.Arg{{Value: (*createOrderRequest)(nil)}}, ArgsOf((*createOrderRequest)(nil)))
}
