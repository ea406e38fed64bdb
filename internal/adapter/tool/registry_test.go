package tool

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autochat/internal/domain"
)

// stubTool is a minimal tool for registry and wrapper tests.
type stubTool struct {
	name   string
	params string
	calls  int
	result *domain.ToolResult
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "stub tool " + s.name }

func (s *stubTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        s.name,
		Description: s.Description(),
		Parameters:  json.RawMessage(s.params),
	}
}

func (s *stubTool) Execute(ctx context.Context, params json.RawMessage) (*domain.ToolResult, error) {
	s.calls++
	if s.result != nil {
		return s.result, nil
	}
	return &domain.ToolResult{Content: "ok"}, nil
}

func intSchema() string {
	return `{"type": "object", "properties": {"n": {"type": "integer"}}, "required": ["n"]}`
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(&stubTool{name: "alpha"}))

	got, err := r.Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Name())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(&stubTool{name: "alpha"}))

	err := r.Register(&stubTool{name: "alpha"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
}

func TestRegistryGetUnknown(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Get("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrToolNotFound))
}

func TestRegistryListSorted(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(&stubTool{name: "zeta"}))
	require.NoError(t, r.Register(&stubTool{name: "alpha"}))
	require.NoError(t, r.Register(&stubTool{name: "mid"}))

	var names []string
	for _, tl := range r.List() {
		names = append(names, tl.Name())
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)

	schemas := r.Schemas()
	require.Len(t, schemas, 3)
	assert.Equal(t, "alpha", schemas[0].Name)
}

func TestRegistryWrapsWithSchemaValidation(t *testing.T) {
	inner := &stubTool{name: "typed", params: intSchema()}
	r := NewRegistry(testLogger())
	require.NoError(t, r.Register(inner))

	got, err := r.Get("typed")
	require.NoError(t, err)

	res, err := got.Execute(context.Background(), json.RawMessage(`{"n": "not a number"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, "schema validation failed")
	assert.Equal(t, 0, inner.calls)

	res, err = got.Execute(context.Background(), json.RawMessage(`{"n": 3}`))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, 1, inner.calls)
}

func TestSchemaValidationSkipsEmptySchema(t *testing.T) {
	inner := &stubTool{name: "bare"}
	wrapped, err := WithSchemaValidation(inner)
	require.NoError(t, err)
	assert.Same(t, domain.Tool(inner), wrapped)
}

func TestSchemaValidationRejectsInvalidJSON(t *testing.T) {
	inner := &stubTool{name: "typed", params: intSchema()}
	wrapped, err := WithSchemaValidation(inner)
	require.NoError(t, err)

	res, err := wrapped.Execute(context.Background(), json.RawMessage(`{not json`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, "invalid JSON")
	assert.Equal(t, 0, inner.calls)
}

func TestSchemaValidationDefaultsEmptyParams(t *testing.T) {
	inner := &stubTool{name: "loose", params: `{"type": "object"}`}
	wrapped, err := WithSchemaValidation(inner)
	require.NoError(t, err)

	res, err := wrapped.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, 1, inner.calls)
}

func TestRateLimitExhaustsBurst(t *testing.T) {
	inner := &stubTool{name: "limited"}
	limited := WithRateLimit(inner, 2)

	for i := 0; i < 2; i++ {
		res, err := limited.Execute(context.Background(), nil)
		require.NoError(t, err)
		assert.False(t, res.IsError)
	}

	res, err := limited.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, `rate limit exceeded for tool "limited"`)
	assert.Equal(t, 2, inner.calls)
}

func TestRateLimitPreservesIdentity(t *testing.T) {
	inner := &stubTool{name: "limited", params: intSchema()}
	limited := WithRateLimit(inner, 1)

	assert.Equal(t, "limited", limited.Name())
	assert.Equal(t, inner.Description(), limited.Description())
	assert.Equal(t, inner.Schema().Name, limited.Schema().Name)
}
