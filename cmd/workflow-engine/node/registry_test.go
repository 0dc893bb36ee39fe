package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("fake", func(cfg *Config) (Node, error) {
		f := newFakeNode(cfg.ID)
		return f, nil
	}))

	n, err := r.Create(&Config{ID: "n1", Type: "fake"})
	require.NoError(t, err)
	assert.Equal(t, "n1", n.ID())
	assert.Equal(t, "fake", n.Identifier())
}

func TestRegistryUnknownType(t *testing.T) {
	r := NewRegistry()

	_, err := r.Create(&Config{ID: "n1", Type: "missing"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.Contains(t, err.Error(), "n1")
}

func TestRegistryDuplicateRegistration(t *testing.T) {
	r := NewRegistry()
	factory := func(cfg *Config) (Node, error) { return newFakeNode(cfg.ID), nil }

	require.NoError(t, r.Register("fake", factory))
	assert.Error(t, r.Register("fake", factory))
}

func TestRegistryIdentifiersSorted(t *testing.T) {
	r := NewRegistry()
	factory := func(cfg *Config) (Node, error) { return newFakeNode(cfg.ID), nil }
	require.NoError(t, r.Register("zeta", factory))
	require.NoError(t, r.Register("alpha", factory))

	assert.Equal(t, []string{"alpha", "zeta"}, r.Identifiers())
}
