package catalog

import (
	"errors"
	"testing"

	"github.com/jonathan/fragrance-customizer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_LoadsEmbeddedProfiles(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	require.Equal(t, 8, c.Len())

	p, err := c.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, "Quiet Forest", p.Name)
	assert.Equal(t, 8.0, p.CategoryScores[types.CategoryWoody])
	assert.Equal(t, 6.0, p.CategoryScores[types.CategoryMusky])
	assert.Equal(t, 3.0, p.CategoryScores[types.CategoryCitrus])
	assert.Equal(t, types.CategoryWoody, p.TopCategory())

	again, err := Default()
	require.NoError(t, err)
	assert.Same(t, c, again)
}

func TestGet_NotFound(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	p, err := c.Get("missing")
	assert.Nil(t, p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProfileNotFound))
}

func TestGet_ReturnsCopy(t *testing.T) {
	c, err := New([]types.BaseProfile{{
		ID: "x", Name: "X",
		CategoryScores: map[types.Category]float64{types.CategoryFloral: 5},
	}})
	require.NoError(t, err)

	p, err := c.Get(" x ")
	require.NoError(t, err)
	p.CategoryScores[types.CategoryFloral] = 0

	fresh, err := c.Get("x")
	require.NoError(t, err)
	assert.Equal(t, 5.0, fresh.CategoryScores[types.CategoryFloral])
}

func TestList_PreservesOrder(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	list := c.List()
	require.Len(t, list, c.Len())
	for i, p := range list {
		assert.Equal(t, "p"+string(rune('1'+i)), p.ID)
		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.CategoryScores)
	}
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		profiles []types.BaseProfile
		want     string
	}{
		{"empty id", []types.BaseProfile{{Name: "Nameless"}}, "empty id"},
		{"duplicate id", []types.BaseProfile{{ID: "a"}, {ID: "a"}}, "duplicate"},
		{"unknown category", []types.BaseProfile{{ID: "a", CategoryScores: map[types.Category]float64{"smoky": 3}}}, "unknown category"},
		{"repeated category", []types.BaseProfile{{ID: "a", CategoryScores: map[types.Category]float64{"woody": 3, "Woody": 4}}}, "more than once"},
		{"score too high", []types.BaseProfile{{ID: "a", CategoryScores: map[types.Category]float64{types.CategoryWoody: 11}}}, "outside"},
		{"negative score", []types.BaseProfile{{ID: "a", CategoryScores: map[types.Category]float64{types.CategoryWoody: -1}}}, "outside"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.profiles)
			require.Error(t, err)
			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNew_FoldsCategoryCase(t *testing.T) {
	c, err := New([]types.BaseProfile{{
		ID:             "a",
		CategoryScores: map[types.Category]float64{"Woody": 7, " CITRUS ": 2},
	}})
	require.NoError(t, err)

	p, err := c.Get("a")
	require.NoError(t, err)
	assert.Equal(t, map[types.Category]float64{types.CategoryWoody: 7, types.CategoryCitrus: 2}, p.CategoryScores)
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`[{"id": }]`))
	require.Error(t, err)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.NotNil(t, errors.Unwrap(err))
}
