package materials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestItemValid(t *testing.T) {
	t.Parallel()

	assert.True(t, Item{CodeItem: "RES01", Description: "Resina", Unit: "kg"}.Valid())
	assert.False(t, Item{CodeItem: "RES01", Description: "Resina"}.Valid())
	assert.False(t, Item{Description: "Resina", Unit: "kg"}.Valid())
}

func TestIndexFind(t *testing.T) {
	t.Parallel()

	ix := NewIndex([]Material{
		{ID: 1, CodeItem: "RES01", Description: "Resina epóxi", Project: strp("P2")},
		{ID: 2, CodeItem: "RES01", Description: "Resina epóxi", Project: strp("P1")},
		{ID: 3, CodeItem: "MAS-02", Description: "Massa de reparo"},
		{ID: 4, CodeItem: "PU 900", Description: "Poliuretano"},
		{ID: 5, CodeItem: "GEL7", Description: "Gel coat branco", Project: strp("P3")},
		{ID: 6, CodeItem: "GEL8", Description: "Gel coat cinza"},
	})
	require.Equal(t, 6, ix.Len())

	tests := []struct {
		name      string
		term      string
		project   string
		wantID    int64
		wantStage string
	}{
		{name: "exact code, same project", term: "RES01", project: "P1", wantID: 2, wantStage: ByCode},
		{name: "exact code, case-insensitive", term: "res01", project: "P2", wantID: 1, wantStage: ByCode},
		{name: "exact code, other project falls back to first", term: "RES01", project: "P9", wantID: 1, wantStage: ByCode},
		{name: "description contains", term: "massa de", wantID: 3, wantStage: ByDescription},
		{name: "description prefers no-project over other project", term: "gel coat", project: "P1", wantID: 6, wantStage: ByDescription},
		{name: "description prefers same project", term: "gel coat", project: "P3", wantID: 5, wantStage: ByDescription},
		{name: "alnum code, term inside code", term: "mas02", wantID: 3, wantStage: ByAlnumCode},
		{name: "alnum code, code inside term", term: "PU-900 lote 3", wantID: 4, wantStage: ByAlnumCode},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			m, stage, ok := ix.Find(tc.term, tc.project)
			require.True(t, ok)
			assert.Equal(t, tc.wantID, m.ID)
			assert.Equal(t, tc.wantStage, stage)
		})
	}
}

func TestIndexFindMiss(t *testing.T) {
	t.Parallel()

	ix := NewIndex([]Material{{ID: 1, CodeItem: "RES01", Description: "Resina"}})

	for _, term := range []string{"", "   ", "XYZ", "---"} {
		_, _, ok := ix.Find(term, "")
		assert.Falsef(t, ok, "term %q", term)
	}
}
