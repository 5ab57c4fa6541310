package form

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/bandwise/internal/irt"
	"github.com/abhisek/bandwise/internal/stage"
)

func TestLoad_Sample(t *testing.T) {
	f, err := Load("testdata/form.json")
	require.NoError(t, err)

	assert.Equal(t, "sample-1-3-3", f.ID)
	require.Len(t, f.Stages, 3)
	assert.Len(t, f.Stages[0].Blocks, 1)
	assert.Len(t, f.Stages[1].Blocks, 3)

	b, ok := f.Block("s2-hard")
	require.True(t, ok)
	assert.Equal(t, stage.Hard, b.TargetDifficulty)
	assert.Len(t, b.AssetURLs, 3)

	items := f.BlockItems("s2-hard")
	require.Len(t, items, 4)
	assert.Equal(t, "s2-hard-1", items[0].ID)

	it, ok := f.Item("s1-2")
	require.True(t, ok)
	assert.Equal(t, 1.2, it.Discrimination)

	pool := f.Stages[2].Pool()
	require.Len(t, pool, 3)
	assert.Equal(t, "s3-easy", pool[0].ID)
}

func TestParse_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"missing stages", `{"id":"f","items":[{"id":"i","difficulty":0,"discrimination":1,"guessing":0}]}`},
		{"zero discrimination", `{"id":"f","items":[{"id":"i","difficulty":0,"discrimination":0,"guessing":0}],"stages":[{"blocks":[{"id":"b","target_difficulty":"EASY","item_ids":["i"]}]}]}`},
		{"unknown difficulty", `{"id":"f","items":[{"id":"i","difficulty":0,"discrimination":1,"guessing":0}],"stages":[{"blocks":[{"id":"b","target_difficulty":"EXPERT","item_ids":["i"]}]}]}`},
		{"extra field", `{"id":"f","version":2,"items":[{"id":"i","difficulty":0,"discrimination":1,"guessing":0}],"stages":[{"blocks":[{"id":"b","target_difficulty":"EASY","item_ids":["i"]}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			var fe *Error
			assert.True(t, errors.As(err, &fe), "want *form.Error, got %T", err)
		})
	}
}

func TestParse_SemanticViolations(t *testing.T) {
	item := `{"id":"i","difficulty":0,"discrimination":1,"guessing":0}`
	tests := []struct {
		name    string
		doc     string
		wantMsg string
	}{
		{
			"two routing blocks",
			`{"id":"f","items":[` + item + `],"stages":[{"blocks":[{"id":"a","target_difficulty":"EASY","item_ids":["i"]},{"id":"b","target_difficulty":"HARD","item_ids":["i"]}]}]}`,
			"exactly one block",
		},
		{
			"unknown item",
			`{"id":"f","items":[` + item + `],"stages":[{"blocks":[{"id":"a","target_difficulty":"EASY","item_ids":["nope"]}]}]}`,
			`unknown item "nope"`,
		},
		{
			"duplicate item",
			`{"id":"f","items":[` + item + `,` + item + `],"stages":[{"blocks":[{"id":"a","target_difficulty":"EASY","item_ids":["i"]}]}]}`,
			"duplicate item id",
		},
		{
			"incomplete pool",
			`{"id":"f","items":[` + item + `],"stages":[{"blocks":[{"id":"r","target_difficulty":"MEDIUM","item_ids":["i"]}]},{"blocks":[{"id":"e","target_difficulty":"EASY","item_ids":["i"]},{"id":"m","target_difficulty":"MEDIUM","item_ids":["i"]}]}]}`,
			"no block for tier HARD",
		},
		{
			"duplicate block across stages",
			`{"id":"f","items":[` + item + `],"stages":[{"blocks":[{"id":"e","target_difficulty":"MEDIUM","item_ids":["i"]}]},{"blocks":[{"id":"e","target_difficulty":"EASY","item_ids":["i"]},{"id":"m","target_difficulty":"MEDIUM","item_ids":["i"]},{"id":"h","target_difficulty":"HARD","item_ids":["i"]}]}]}`,
			`duplicate block id "e"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantMsg), "error %q missing %q", err, tt.wantMsg)
		})
	}
}

func TestParse_PoolErrorUnwraps(t *testing.T) {
	doc := `{"id":"f","items":[{"id":"i","difficulty":0,"discrimination":1,"guessing":0}],"stages":[{"blocks":[{"id":"r","target_difficulty":"MEDIUM","item_ids":["i"]}]},{"blocks":[{"id":"e","target_difficulty":"EASY","item_ids":["i"]}]}]}`
	_, err := Parse([]byte(doc))
	var pe *stage.PoolError
	assert.True(t, errors.As(err, &pe))
}

func TestParse_ItemRangeFromSchema(t *testing.T) {
	doc := `{"id":"f","items":[{"id":"i","difficulty":0,"discrimination":1,"guessing":0.4}],"stages":[{"blocks":[{"id":"b","target_difficulty":"EASY","item_ids":["i"]}]}]}`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")
}

func TestItemValidateMatchesSchemaBounds(t *testing.T) {
	// Items the schema admits must also pass irt validation.
	data, err := os.ReadFile("testdata/form.json")
	require.NoError(t, err)
	f, err := Parse(data)
	require.NoError(t, err)
	for _, it := range f.Items {
		assert.NoError(t, it.Validate(), "item %s", it.ID)
		_, err := irt.ProbabilityCorrect(0, it)
		assert.NoError(t, err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("testdata/does-not-exist.json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
