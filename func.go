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
	"reflect"
	"strings"

	"rivaas.dev/apilog/internal/handlername"
	"rivaas.dev/apilog/model"
)

// Func wraps a typed handler so every call goes through ic. It is meant for
// handlers outside an HTTP stack, such as RPC methods or queue consumers.
// The handler name is taken from fn; exported fields of a struct request
// become named arguments.
//
// Example:
//
//	createOrder := apilog.Func(ic, svc.CreateOrder)
//	order, err := createOrder(ctx, CreateOrderRequest{SKU: "A-1", Quantity: 2})
func Func[Req, Resp any](ic *Interceptor, fn func(context.Context, Req) (Resp, error)) func(context.Context, Req) (Resp, error) {
	target, operation := handlername.FromFunc(fn)

	return func(ctx context.Context, req Req) (Resp, error) {
		var resp Resp
		_, err := ic.Intercept(ctx, &model.Invocation{
			Target:    target,
			Operation: operation,
			Args:      ArgsOf(req),
			Proceed: func(ctx context.Context) (any, error) {
				var err error
				resp, err = fn(ctx, req)
				return resp, err
			},
		})

		return resp, err
	}
}

// ArgsOf turns a request value into named arguments. A struct, or a
// pointer to one, yields one argument per exported field, named after its
// json tag when present. Any other value yields a single unnamed argument.
func ArgsOf(v any) []model.Arg {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return []model.Arg{{Value: v}}
	}

	rt := rv.Type()
	args := make([]model.Arg, 0, rt.NumField())
	for i := range rt.NumField() {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tag, ok := field.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		args = append(args, model.Arg{Name: name, Value: rv.Field(i).Interface()})
	}

	return args
}
