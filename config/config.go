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

package config

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"
	"time"

	"dario.cat/mergo"
	"github.com/go-viper/mapstructure/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"rivaas.dev/apilog/config/codec"
	"rivaas.dev/apilog/config/dumper"
	"rivaas.dev/apilog/config/source"
	"rivaas.dev/apilog/model"
)

// TagName is the struct tag that maps settings fields to keys.
const TagName = "config"

//go:embed settings.schema.json
var settingsSchemaJSON []byte

var settingsSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return compileSchema("settings.schema.json", settingsSchemaJSON)
})

// SettingsSchema returns the JSON schema effective settings are checked
// against.
func SettingsSchema() []byte {
	return bytes.Clone(settingsSchemaJSON)
}

// Option configures a [Loader].
type Option func(l *Loader) error

// Loader turns sources into validated [model.Settings].
//
// Sources are loaded in the order they were given and merged, later values
// winning. The merged map is checked by the optional JSON schema and the
// custom validators, decoded onto the defaults and then validated against
// the embedded settings schema and [model.Settings.Validate].
//
// Loader is safe for concurrent use.
type Loader struct {
	sources    []Source
	dumpers    []Dumper
	defaults   model.Settings
	userSchema *jsonschema.Schema
	validators []func(map[string]any) error

	mu       sync.RWMutex
	values   map[string]any
	settings *model.Settings
}

// WithSource adds a source.
func WithSource(src Source) Option {
	return func(l *Loader) error {
		if src == nil {
			return ErrNilSource
		}
		l.sources = append(l.sources, src)
		return nil
	}
}

// WithFile adds a file source. The format is detected from the extension
// (.yaml, .yml, .json, .toml). Environment variables in path are expanded.
//
// Example:
//
//	loader := config.MustNew(
//	    config.WithFile("/etc/apilog/apilog.yaml"),
//	    config.WithFile("${APILOG_CONFIG_DIR}/override.json"),
//	)
func WithFile(path string) Option {
	return func(l *Loader) error {
		path = os.ExpandEnv(path)
		format, err := DetectFormat(path)
		if err != nil {
			return NewError("file-source", "detect-format", err)
		}

		return WithFileAs(path, format)(l)
	}
}

// WithFileAs adds a file source decoded with codecType.
func WithFileAs(path string, codecType codec.Type) Option {
	return func(l *Loader) error {
		decoder, err := codec.GetDecoder(codecType)
		if err != nil {
			return NewError("file-source", "get-decoder", err)
		}
		l.sources = append(l.sources, source.NewFile(os.ExpandEnv(path), decoder))
		return nil
	}
}

// WithContent adds an in-memory document decoded with codecType.
func WithContent(data []byte, codecType codec.Type) Option {
	return func(l *Loader) error {
		decoder, err := codec.GetDecoder(codecType)
		if err != nil {
			return NewError("content-source", "get-decoder", err)
		}
		l.sources = append(l.sources, source.NewFileContent(data, decoder))
		return nil
	}
}

// WithEnv adds the environment variables starting with prefix. Names are
// matched against the settings keys, so with prefix "APILOG_":
//
//	APILOG_ENABLED=true                   -> enabled
//	APILOG_LOG_MODE=detailed              -> log_mode
//	APILOG_FILTERS_MIN_PROCESSING_TIME=5ms -> filters.min_processing_time
//	APILOG_TRIGGERS=exception,header      -> triggers
func WithEnv(prefix string) Option {
	return func(l *Loader) error {
		l.sources = append(l.sources, source.NewOSEnvVar(prefix, source.WithKnownKeys(KnownKeys())))
		return nil
	}
}

// WithConsul adds a Consul key whose format is detected from its
// extension. The option does nothing when CONSUL_HTTP_ADDR is unset.
func WithConsul(key string) Option {
	return func(l *Loader) error {
		key = os.ExpandEnv(key)
		format, err := DetectFormat(key)
		if err != nil {
			return NewError("consul-source", "detect-format", err)
		}

		return WithConsulAs(key, format)(l)
	}
}

// WithConsulAs adds a Consul key decoded with codecType. The caster types
// load a single value named after the last key segment. The option does
// nothing when CONSUL_HTTP_ADDR is unset.
func WithConsulAs(key string, codecType codec.Type) Option {
	return func(l *Loader) error {
		if os.Getenv("CONSUL_HTTP_ADDR") == "" {
			return nil
		}
		decoder, err := codec.GetDecoder(codecType)
		if err != nil {
			return NewError("consul-source", "get-decoder", err)
		}
		src, err := source.NewConsul(os.ExpandEnv(key), decoder, nil)
		if err != nil {
			return NewError("consul-source", "create-client", err)
		}
		l.sources = append(l.sources, src)
		return nil
	}
}

// WithDumper adds a dumper used by [Loader.Dump].
func WithDumper(d Dumper) Option {
	return func(l *Loader) error {
		if d == nil {
			return ErrNilDumper
		}
		l.dumpers = append(l.dumpers, d)
		return nil
	}
}

// WithFileDumper dumps to path, with the format detected from its
// extension.
func WithFileDumper(path string) Option {
	return func(l *Loader) error {
		path = os.ExpandEnv(path)
		format, err := DetectFormat(path)
		if err != nil {
			return NewError("file-dumper", "detect-format", err)
		}

		return WithFileDumperAs(path, format)(l)
	}
}

// WithFileDumperAs dumps to path encoded with codecType.
func WithFileDumperAs(path string, codecType codec.Type) Option {
	return func(l *Loader) error {
		encoder, err := codec.GetEncoder(codecType)
		if err != nil {
			return NewError("file-dumper", "get-encoder", err)
		}
		l.dumpers = append(l.dumpers, dumper.NewFile(os.ExpandEnv(path), encoder))
		return nil
	}
}

// WithJSONSchema checks the merged raw values against schema before they
// are decoded.
func WithJSONSchema(schema []byte) Option {
	return func(l *Loader) error {
		s, err := compileSchema("user.schema.json", schema)
		if err != nil {
			return NewError("json-schema", "compile", err)
		}
		l.userSchema = s
		return nil
	}
}

// WithValidator adds a check on the merged raw values. A panicking
// validator fails the load.
func WithValidator(fn func(map[string]any) error) Option {
	return func(l *Loader) error {
		if fn != nil {
			l.validators = append(l.validators, fn)
		}
		return nil
	}
}

// WithDefaults replaces the settings the sources are decoded onto.
// The default is [model.DefaultSettings].
func WithDefaults(s model.Settings) Option {
	return func(l *Loader) error {
		l.defaults = s.Clone()
		return nil
	}
}

// New creates a loader. Option errors are joined; the loader is returned
// even when some options failed.
func New(opts ...Option) (*Loader, error) {
	l := &Loader{defaults: model.DefaultSettings()}

	var errs error
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(l); err != nil {
			errs = errors.Join(errs, err)
		}
	}

	return l, errs //nolint:nilnil // partial loader is returned with the error
}

// MustNew is like [New] but panics on error.
func MustNew(opts ...Option) *Loader {
	l, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("config: failed to create loader: %v", err))
	}

	return l
}

// Load reads every source and returns the effective settings.
//
// Errors are [*Error] values naming the step that failed.
func (l *Loader) Load(ctx context.Context) (*model.Settings, error) {
	if ctx == nil {
		return nil, errors.New("context cannot be nil")
	}

	values, err := l.loadSources(ctx)
	if err != nil {
		return nil, err
	}

	if l.userSchema != nil {
		if err = validateSchema(l.userSchema, values); err != nil {
			return nil, NewError("json-schema", "validate", err)
		}
	}

	for i, fn := range l.validators {
		if err = runValidator(fn, values); err != nil {
			return nil, NewError(fmt.Sprintf("custom-validator[%d]", i), "validate", err)
		}
	}

	settings, err := l.decode(values)
	if err != nil {
		return nil, NewError("settings", "decode", err)
	}

	schema, err := settingsSchema()
	if err != nil {
		return nil, NewError("settings-schema", "compile", err)
	}
	if err = validateSchema(schema, settings); err != nil {
		return nil, NewError("settings-schema", "validate", err)
	}
	if err = settings.Validate(); err != nil {
		return nil, NewError("settings", "validate", err)
	}

	l.mu.Lock()
	l.values = values
	l.settings = settings
	l.mu.Unlock()

	out := settings.Clone()

	return &out, nil
}

// MustLoad is like [Loader.Load] but panics on error.
func (l *Loader) MustLoad(ctx context.Context) *model.Settings {
	s, err := l.Load(ctx)
	if err != nil {
		panic(err)
	}

	return s
}

// Values returns a copy of the raw merged values of the last successful
// load, or an empty map.
func (l *Loader) Values() map[string]any {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]any, len(l.values))
	for k, v := range l.values {
		out[k] = v
	}

	return out
}

// Settings returns the settings of the last successful load.
func (l *Loader) Settings() (model.Settings, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.settings == nil {
		return model.Settings{}, false
	}

	return l.settings.Clone(), true
}

// Dump writes the effective settings of the last successful load to every
// dumper. Durations are written as strings such as "250ms".
func (l *Loader) Dump(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context cannot be nil")
	}
	s, ok := l.Settings()
	if !ok {
		return ErrNotLoaded
	}

	values, err := SettingsMap(s)
	if err != nil {
		return NewError("settings", "encode", err)
	}
	for i, d := range l.dumpers {
		if err = d.Dump(ctx, &values); err != nil {
			return NewError(fmt.Sprintf("dumper[%d]", i), "dump", err)
		}
	}

	return nil
}

// SettingsMap converts s to the nested key layout used by the sources.
func SettingsMap(s model.Settings) (map[string]any, error) {
	out := make(map[string]any)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: TagName, Result: &out})
	if err != nil {
		return nil, err
	}
	if err = dec.Decode(s); err != nil {
		return nil, err
	}

	if filters, ok := out["filters"].(map[string]any); ok {
		filters["min_processing_time"] = s.Filters.MinProcessingTime.String()
		filters["max_processing_time"] = s.Filters.MaxProcessingTime.String()
	}

	return out, nil
}

// KnownKeys returns the settings key tree: sections map to nested maps,
// every other key maps to true.
func KnownKeys() map[string]any {
	return keyTree(reflect.TypeFor[model.Settings]())
}

func keyTree(t reflect.Type) map[string]any {
	keys := make(map[string]any, t.NumField())
	for i := range t.NumField() {
		field := t.Field(i)
		name, _, _ := strings.Cut(field.Tag.Get(TagName), ",")
		if name == "" || name == "-" {
			continue
		}
		if field.Type.Kind() == reflect.Struct {
			keys[name] = keyTree(field.Type)
			continue
		}
		keys[name] = true
	}

	return keys
}

func (l *Loader) loadSources(ctx context.Context) (map[string]any, error) {
	merged := make(map[string]any)
	for i, src := range l.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		conf, err := src.Load(ctx)
		if err != nil {
			return nil, NewError(fmt.Sprintf("source[%d]", i), "load", err)
		}
		if err = mergo.Map(&merged, normalizeMapKeys(conf), mergo.WithOverride); err != nil {
			return nil, NewError(fmt.Sprintf("source[%d]", i), "merge", err)
		}
	}

	return merged, nil
}

func (l *Loader) decode(values map[string]any) (*model.Settings, error) {
	settings := l.defaults.Clone()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          TagName,
		WeaklyTypedInput: true,
		ZeroFields:       true,
		ErrorUnused:      true,
		Result:           &settings,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			durationHook,
			modeHook,
			stringToMapHook,
			stringToSliceHook,
		),
	})
	if err != nil {
		return nil, err
	}
	if err = dec.Decode(values); err != nil {
		return nil, err
	}

	return &settings, nil
}

// normalizeMapKeys lowercases keys at every depth.
func normalizeMapKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = normalizeMapKeys(nested)
		}
		out[strings.ToLower(k)] = v
	}

	return out
}

func runValidator(fn func(map[string]any) error, values map[string]any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("validator panic: %v", r)
		}
	}()

	return fn(values)
}

func compileSchema(name string, schema []byte) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schema))
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err = compiler.AddResource(name, doc); err != nil {
		return nil, err
	}

	return compiler.Compile(name)
}

// validateSchema checks v in its JSON form, so Go types and numbers from
// any codec are seen the way the schema describes them.
func validateSchema(schema *jsonschema.Schema, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return err
	}

	return schema.Validate(doc)
}

var (
	durationType = reflect.TypeFor[time.Duration]()
	modeType     = reflect.TypeFor[model.Mode]()
)

func durationHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != durationType {
		return data, nil
	}

	return time.ParseDuration(strings.TrimSpace(reflect.ValueOf(data).String()))
}

func modeHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != modeType {
		return data, nil
	}

	return model.ParseMode(reflect.ValueOf(data).String())
}

// stringToSliceHook splits "a, b" into ["a" "b"]. An empty string is an
// empty list.
func stringToSliceHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice {
		return data, nil
	}

	return splitList(reflect.ValueOf(data).String()), nil
}

// stringToMapHook parses "X-Probe=1, X-Synthetic=true".
func stringToMapHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Map {
		return data, nil
	}

	out := make(map[string]any)
	for _, pair := range splitList(reflect.ValueOf(data).String()) {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("expected key=value, got %q", pair)
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	return out, nil
}

func splitList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}

	return parts
}
