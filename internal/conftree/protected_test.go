package conftree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtected(t *testing.T) {
	tree := map[string]any{
		"region":   "eu-west-1",
		"replicas": 3,
		"deploy":   map[string]any{"canary": true},
	}

	t.Run("production path always rejects bulk iteration", func(t *testing.T) {
		p := NewProtected(tree)

		entries, err := p.Entries()

		assert.Nil(t, entries)
		var usageErr *UsageError
		require.ErrorAs(t, err, &usageErr)
		assert.Equal(t, "Entries", usageErr.Op)
	})

	t.Run("individual keys remain readable through Get", func(t *testing.T) {
		p := NewProtected(tree)

		v, ok := p.Get("region")
		require.True(t, ok)
		assert.Equal(t, "eu-west-1", v)

		_, ok = p.Get("missing")
		assert.False(t, ok)
	})

	t.Run("a substituted lister returns the real entry set", func(t *testing.T) {
		p := NewProtected(tree).WithLister(StaticLister{})

		entries, err := p.Entries()
		require.NoError(t, err)

		require.Len(t, entries, 3)
		assert.Equal(t, "deploy", entries[0].Key)
		assert.Equal(t, "region", entries[1].Key)
		assert.Equal(t, "replicas", entries[2].Key)
		assert.Equal(t, 3, entries[2].Value)
	})

	t.Run("substitution does not leak into the original wrapper", func(t *testing.T) {
		p := NewProtected(tree)
		_ = p.WithLister(StaticLister{})

		_, err := p.Entries()
		assert.Error(t, err)
	})
}
