package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModeSequential},
		{in: "sequential", want: ModeSequential},
		{in: "PARALLEL", want: ModeParallel},
		{in: " Parallel ", want: ModeParallel},
		{in: "batch", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuild(t *testing.T) {
	t.Run("keeps declaration order and defaults mode", func(t *testing.T) {
		g, err := Build([]Descriptor{
			{ID: "b"},
			{ID: "a", Dependencies: []string{"b"}, Mode: ModeParallel},
		})
		require.NoError(t, err)

		assert.Equal(t, 2, g.Len())
		assert.Equal(t, []string{"b", "a"}, g.IDs())
		assert.Equal(t, ModeSequential, g.Mode("b"))
		assert.Equal(t, ModeParallel, g.Mode("a"))
		assert.Equal(t, []string{"b"}, g.Dependencies("a"))
	})

	t.Run("collapses repeated dependencies", func(t *testing.T) {
		g, err := Build([]Descriptor{
			{ID: "1"},
			{ID: "2", Dependencies: []string{"1", "1"}},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"1"}, g.Dependencies("2"))
	})

	t.Run("rejects duplicate ids", func(t *testing.T) {
		_, err := Build([]Descriptor{{ID: "1"}, {ID: "1"}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDuplicateID))
		assert.Contains(t, err.Error(), "1")
	})

	t.Run("rejects empty ids", func(t *testing.T) {
		_, err := Build([]Descriptor{{ID: "1"}, {ID: ""}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrEmptyID))
	})

	t.Run("unknown ids have no mode or dependencies", func(t *testing.T) {
		g, err := Build(nil)
		require.NoError(t, err)
		assert.False(t, g.Has("x"))
		assert.Equal(t, Mode(""), g.Mode("x"))
		assert.Nil(t, g.Dependencies("x"))
	})
}
