package ids

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandom_Format(t *testing.T) {
	gen := Random{}
	for i := 0; i < 200; i++ {
		id := gen.NewID()
		require.Len(t, id, Length)
		for _, r := range id {
			assert.Contains(t, alphabet, string(r))
		}
	}
}

func TestUUID_Format(t *testing.T) {
	id := UUID{}.NewID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
}

func TestNew(t *testing.T) {
	tests := []struct {
		strategy string
		wantErr  bool
	}{
		{"", false},
		{StrategyRandom, false},
		{StrategyUUID, false},
		{"sequential", true},
	}
	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			gen, err := New(tt.strategy)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, gen.NewID())
		})
	}
}

func TestUnique_SkipsCollisions(t *testing.T) {
	seq := []string{"a", "a", "b", "a", "c"}
	i := 0
	gen := GeneratorFunc(func() string {
		id := seq[i]
		i++
		return id
	})

	u := NewUnique(gen)
	assert.Equal(t, "a", u.NewID())
	assert.Equal(t, "b", u.NewID())
	assert.Equal(t, "c", u.NewID())
}

func TestUnique_Reserve(t *testing.T) {
	seq := []string{"taken", "free"}
	i := 0
	u := NewUnique(GeneratorFunc(func() string {
		id := seq[i]
		i++
		return id
	}))
	u.Reserve("taken")
	assert.Equal(t, "free", u.NewID())
}
