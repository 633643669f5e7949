package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicyAllowsEverything(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, DefaultOrderPolicy)
	require.NoError(t, err)

	for _, tr := range []Transition{
		{From: "pending", To: "delivered"},
		{From: "delivered", To: "pending"},
		{From: "cancelled", To: "confirmed"},
	} {
		d, err := engine.Evaluate(ctx, tr)
		require.NoError(t, err)
		assert.True(t, d.Allow, "%s -> %s", tr.From, tr.To)
	}
}

func TestStrictPolicy(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, StrictOrderPolicy)
	require.NoError(t, err)

	tests := []struct {
		from, to string
		allow    bool
	}{
		{"pending", "confirmed", true},
		{"pending", "cancelled", true},
		{"confirmed", "delivered", true},
		{"pending", "pending", true},
		{"delivered", "pending", false},
		{"cancelled", "confirmed", false},
		{"pending", "delivered", false},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			d, err := engine.Evaluate(ctx, Transition{OrderID: "ord_1", From: tt.from, To: tt.to})
			require.NoError(t, err)
			assert.Equal(t, tt.allow, d.Allow)
			assert.NotEmpty(t, d.Reason)
		})
	}
}

func TestLoadEngine(t *testing.T) {
	ctx := context.Background()

	engine, err := LoadEngine(ctx, "")
	require.NoError(t, err)
	d, err := engine.Evaluate(ctx, Transition{From: "delivered", To: "pending"})
	require.NoError(t, err)
	assert.True(t, d.Allow)

	path := filepath.Join(t.TempDir(), "orders.rego")
	require.NoError(t, os.WriteFile(path, []byte(StrictOrderPolicy), 0o644))
	engine, err = LoadEngine(ctx, path)
	require.NoError(t, err)
	d, err = engine.Evaluate(ctx, Transition{From: "delivered", To: "pending"})
	require.NoError(t, err)
	assert.False(t, d.Allow)

	_, err = LoadEngine(ctx, filepath.Join(t.TempDir(), "missing.rego"))
	assert.Error(t, err)

	_, err = NewEngine(ctx, "package order_policy\n decision = {")
	assert.Error(t, err)
}
