// Package schema keeps compiled JSON schemas under string identifiers and
// asserts payloads against them.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// ErrSchemaNotRegistered is returned when validating against an unknown identifier.
// It signals a harness bug, never a payload problem.
var ErrSchemaNotRegistered = errors.New("schema not registered")

// FieldError is one schema violation.
type FieldError struct {
	Path    string
	Message string
}

func (e FieldError) String() string {
	return e.Path + " " + e.Message
}

// Result is the outcome of validating one payload.
type Result struct {
	Valid  bool
	Errors []FieldError
}

// ValidationError aggregates every violation found by Assert.
type ValidationError struct {
	SchemaID string
	Errors   []FieldError
}

func (e *ValidationError) Error() string {
	lines := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		lines = append(lines, fe.String())
	}
	return fmt.Sprintf("schema validation failed for %q:\n%s", e.SchemaID, strings.Join(lines, "\n"))
}

// Registry maps schema identifiers to compiled validators. It is safe for
// concurrent use; registering an existing identifier replaces it.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*gojsonschema.Schema
}

func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*gojsonschema.Schema)}
}

// Register compiles schema and stores it under id. schema may be a JSON
// document as string, []byte or json.RawMessage, or any Go value that
// marshals to one.
func (r *Registry) Register(id string, schema any) error {
	compiled, err := gojsonschema.NewSchema(documentLoader(schema))
	if err != nil {
		return fmt.Errorf("failed to compile schema %q: %w", id, err)
	}

	r.mu.Lock()
	r.schemas[id] = compiled
	r.mu.Unlock()
	return nil
}

// Registered reports whether id has a compiled schema.
func (r *Registry) Registered(id string) bool {
	_, ok := r.lookup(id)
	return ok
}

// Validate checks data against the schema registered as id. Raw JSON is passed
// as []byte or json.RawMessage; every other value, strings included, is
// validated as the Go value it is.
func (r *Registry) Validate(id string, data any) (Result, error) {
	s, ok := r.lookup(id)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrSchemaNotRegistered, id)
	}

	res, err := s.Validate(dataLoader(data))
	if err != nil {
		return Result{}, fmt.Errorf("failed to validate against %q: %w", id, err)
	}

	out := Result{Valid: res.Valid()}
	for _, re := range res.Errors() {
		path := re.Field()
		if path == "" || path == "(root)" {
			path = "root"
		}
		out.Errors = append(out.Errors, FieldError{Path: path, Message: re.Description()})
	}
	return out, nil
}

// Assert returns a *ValidationError listing every violation when data does not
// match the schema.
func (r *Registry) Assert(id string, data any) error {
	res, err := r.Validate(id, data)
	if err != nil {
		return err
	}
	if !res.Valid {
		return &ValidationError{SchemaID: id, Errors: res.Errors}
	}
	return nil
}

// AssertArrayItems requires data to be an array and asserts every element.
func (r *Registry) AssertArrayItems(id string, data any) error {
	if !r.Registered(id) {
		return fmt.Errorf("%w: %q", ErrSchemaNotRegistered, id)
	}

	items, err := asArray(data)
	if err != nil {
		return err
	}
	for i, item := range items {
		if err := r.Assert(id, item); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

// AssertHasProperties requires data to be a JSON object with every named top-level property.
func AssertHasProperties(data any, properties ...string) error {
	obj, err := asObject(data)
	if err != nil {
		return err
	}
	var missing []string
	for _, p := range properties {
		if _, ok := obj[p]; !ok {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		have := make([]string, 0, len(obj))
		for k := range obj {
			have = append(have, k)
		}
		sort.Strings(have)
		return fmt.Errorf("missing properties %v (have %v)", missing, have)
	}
	return nil
}

// AssertType compares the JSON type of value (null, boolean, number, string,
// array, object) with expected. []byte and json.RawMessage are read as raw JSON.
func AssertType(value any, expected string) error {
	if actual := JSONType(value); actual != expected {
		return fmt.Errorf("expected type %s, got %s", expected, actual)
	}
	return nil
}

// JSONType names the JSON type value encodes to. Raw JSON that does not parse
// is reported as "invalid".
func JSONType(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case []byte, json.RawMessage:
		v, err := normalize(value)
		if err != nil {
			return "invalid"
		}
		return JSONType(v)
	}
	if _, ok := value.(json.Number); ok {
		return "number"
	}
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return "null"
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	}
	return v.Kind().String()
}

func (r *Registry) lookup(id string) (*gojsonschema.Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[id]
	return s, ok
}

func documentLoader(doc any) gojsonschema.JSONLoader {
	switch v := doc.(type) {
	case string:
		return gojsonschema.NewStringLoader(v)
	case []byte:
		return gojsonschema.NewBytesLoader(v)
	case json.RawMessage:
		return gojsonschema.NewBytesLoader(v)
	}
	return gojsonschema.NewGoLoader(doc)
}

func dataLoader(data any) gojsonschema.JSONLoader {
	switch v := data.(type) {
	case []byte:
		return gojsonschema.NewBytesLoader(v)
	case json.RawMessage:
		return gojsonschema.NewBytesLoader(v)
	}
	return gojsonschema.NewGoLoader(data)
}

// normalize turns any value into its generic JSON form.
func normalize(data any) (any, error) {
	var raw []byte
	switch v := data.(type) {
	case []byte:
		raw = v
	case json.RawMessage:
		raw = v
	default:
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("value is not JSON encodable: %w", err)
		}
		raw = b
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("value is not valid JSON: %w", err)
	}
	return out, nil
}

func asArray(data any) ([]any, error) {
	v, err := normalize(data)
	if err != nil {
		return nil, err
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected an array, got %s", JSONType(v))
	}
	return items, nil
}

func asObject(data any) (map[string]any, error) {
	v, err := normalize(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object, got %s", JSONType(v))
	}
	return obj, nil
}
