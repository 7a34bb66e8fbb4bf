package schema

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orderSchema = `{
  "type": "object",
  "required": ["id", "status"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "status": {"type": "string", "enum": ["pending", "enriched"]},
    "totalAmount": {"type": "number", "minimum": 0}
  }
}`

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	require.NoError(t, r.Register("order", orderSchema))
	return r
}

func TestRegister_RejectsBrokenSchema(t *testing.T) {
	r := NewRegistry()

	err := r.Register("broken", `{"type": 12}`)
	assert.Error(t, err)
	assert.False(t, r.Registered("broken"))
}

func TestRegister_AcceptsGoValues(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("named", map[string]any{
		"type":     "object",
		"required": []string{"name"},
	}))

	assert.NoError(t, r.Assert("named", map[string]any{"name": "x"}))
	assert.Error(t, r.Assert("named", map[string]any{}))
}

func TestValidate_UnknownSchema(t *testing.T) {
	r := NewRegistry()

	_, err := r.Validate("missing", map[string]any{})
	assert.True(t, errors.Is(err, ErrSchemaNotRegistered))

	err = r.AssertArrayItems("missing", []any{})
	assert.True(t, errors.Is(err, ErrSchemaNotRegistered))
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	r := newRegistry(t)

	res, err := r.Validate("order", map[string]any{"status": "lost", "totalAmount": -1})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 3)
}

func TestValidate_RawJSON(t *testing.T) {
	r := newRegistry(t)

	res, err := r.Validate("order", []byte(`{"id":"ORD-1","status":"pending"}`))
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = r.Validate("order", json.RawMessage(`{"id":"","status":"pending"}`))
	require.NoError(t, err)
	assert.False(t, res.Valid)
}

func TestAssert_ReportsViolations(t *testing.T) {
	r := newRegistry(t)

	err := r.Assert("order", map[string]any{"id": "ORD-1"})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "order", verr.SchemaID)
	require.Len(t, verr.Errors, 1)
	assert.Contains(t, verr.Error(), "status")
}

func TestAssert_Structs(t *testing.T) {
	r := newRegistry(t)

	type order struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	assert.NoError(t, r.Assert("order", order{ID: "ORD-1", Status: "enriched"}))
}

func TestRegister_ReplacesExisting(t *testing.T) {
	r := newRegistry(t)
	require.NoError(t, r.Register("order", `{"type": "array"}`))

	assert.NoError(t, r.Assert("order", []any{}))
	assert.Error(t, r.Assert("order", map[string]any{"id": "ORD-1", "status": "pending"}))
}

func TestAssertArrayItems(t *testing.T) {
	r := newRegistry(t)

	good := []map[string]any{{"id": "a", "status": "pending"}, {"id": "b", "status": "enriched"}}
	assert.NoError(t, r.AssertArrayItems("order", good))

	bad := []map[string]any{{"id": "a", "status": "pending"}, {"id": "b"}}
	err := r.AssertArrayItems("order", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "item 1")

	assert.ErrorContains(t, r.AssertArrayItems("order", map[string]any{}), "expected an array")
}

func TestRegistry_ConcurrentUse(t *testing.T) {
	r := newRegistry(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = r.Register("order", orderSchema)
		}()
		go func() {
			defer wg.Done()
			_ = r.Assert("order", map[string]any{"id": "x", "status": "pending"})
		}()
	}
	wg.Wait()
	assert.True(t, r.Registered("order"))
}

func TestAssertHasProperties(t *testing.T) {
	obj := map[string]any{"id": "ORD-1", "items": []any{}}

	assert.NoError(t, AssertHasProperties(obj, "id", "items"))

	err := AssertHasProperties(obj, "id", "enrichedAt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enrichedAt")

	assert.Error(t, AssertHasProperties([]any{1}, "id"))
}

func TestAssertType(t *testing.T) {
	tests := []struct {
		value    any
		expected string
	}{
		{nil, "null"},
		{true, "boolean"},
		{"x", "string"},
		{3, "number"},
		{2.5, "number"},
		{json.Number("7"), "number"},
		{[]any{}, "array"},
		{map[string]any{}, "object"},
		{struct{}{}, "object"},
		{(*int)(nil), "null"},
	}

	for _, tt := range tests {
		assert.NoError(t, AssertType(tt.value, tt.expected), "%#v", tt.value)
	}
	assert.Error(t, AssertType("1", "number"))
}

func TestAssertType_RawJSON(t *testing.T) {
	raw := json.RawMessage(`{"id":"ORD-1"}`)

	assert.Equal(t, "object", JSONType(raw))
	assert.NoError(t, AssertType(raw, "object"))
	assert.NoError(t, AssertHasProperties(raw, "id"))

	assert.NoError(t, AssertType([]byte(`[1,2]`), "array"))
	assert.NoError(t, AssertType([]byte(`null`), "null"))
	assert.NoError(t, AssertType([]byte(`"ORD-1"`), "string"))
	assert.Equal(t, "invalid", JSONType([]byte(`{bad`)))
}
