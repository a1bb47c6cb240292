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

package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"reflect"
	"strconv"
	"strings"
	"time"

	"rivaas.dev/apilog/internal/typename"
	"rivaas.dev/apilog/model"
)

// safeContentTypes are request content types whose bound arguments are
// logged in full.
var safeContentTypes = []string{
	"application/json",
	"application/x-www-form-urlencoded",
	"multipart/form-data",
	"text/plain",
}

type fileSummary struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

type argEntry struct {
	name  string
	value any
}

// Arguments renders args as an ordered JSON object.
func (d *Default) Arguments(args []model.Arg, req model.Request, s *model.Settings) string {
	if s.MaxPayloadLength == 0 {
		return Omitted
	}

	contentType := ""
	if req != nil {
		contentType = req.ContentType()
	}
	if s.ExcludedContentType(contentType) {
		return fmt.Sprintf("[content-type excluded: %s]", contentType)
	}
	safe := isSafeContentType(contentType)

	entries := make([]argEntry, 0, len(args))
	for i, arg := range args {
		name := arg.Name
		if name == "" {
			name = "arg" + strconv.Itoa(i)
		}
		entries = append(entries, argEntry{name: name, value: d.argumentValue(name, arg.Value, safe, s)})
	}

	out, err := d.encodeObject(entries)
	if err != nil {
		return "[argument serialization error: " + err.Error() + "]"
	}

	return Truncate(out, s.MaxPayloadLength)
}

func (d *Default) argumentValue(name string, v any, safe bool, s *model.Settings) any {
	if s.SensitiveArg(name) {
		return s.Sensitive.Mask
	}
	if v == nil {
		return nil
	}
	if d.isInternal(v) {
		return "[excluded type: " + typename.Simple(v) + "]"
	}

	switch f := v.(type) {
	case *multipart.FileHeader:
		return summarizeFile(f)
	case []*multipart.FileHeader:
		files := make([]any, len(f))
		for i, fh := range f {
			files[i] = summarizeFile(fh)
		}
		return files
	}

	if safe || isScalar(v) {
		return v
	}

	return "[excluded complex type: " + typename.Qualified(v) + "]"
}

func summarizeFile(fh *multipart.FileHeader) any {
	if fh == nil {
		return "[file info unavailable: nil file header]"
	}

	return fileSummary{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	}
}

func (d *Default) encodeObject(entries []argEntry) (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.name)
		if err != nil {
			return "", err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := d.marshal(e.value)
		if err != nil {
			return "", fmt.Errorf("argument %q: %w", e.name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')

	return buf.String(), nil
}

func isSafeContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	ct := strings.ToLower(contentType)
	for _, safe := range safeContentTypes {
		if strings.HasPrefix(ct, safe) {
			return true
		}
	}

	return false
}

func isScalar(v any) bool {
	if v == nil {
		return true
	}
	switch v.(type) {
	case time.Time, *time.Time:
		return true
	}

	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Pointer {
		if reflect.ValueOf(v).IsNil() {
			return true
		}
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return true
	}

	return false
}
