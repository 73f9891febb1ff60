package levels

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/Pulse/internal/domain"
)

func TestBuiltin(t *testing.T) {
	c := Builtin()

	ids := make([]string, 0, c.Len())
	for _, l := range c.List() {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []string{
		"addition",
		"multiplication",
		"double",
		"swap-pairs",
		"sum-to-zero-filter",
		"constant-count",
	}, ids)

	level, err := c.Get("addition")
	require.NoError(t, err)
	assert.Equal(t, "Addition", level.Name)
	require.Len(t, level.TestCases, 2)
	assert.Equal(t, [][]int64{{3, 5, 7}, {7, 8, 10}}, level.TestCases[0].Inputs)
	assert.Equal(t, [][]int64{{10, 13, 17}}, level.TestCases[0].Outputs)

	ins, outs := level.Channels()
	assert.Equal(t, 2, ins)
	assert.Equal(t, 1, outs)
}

func TestCatalog_GetUnknown(t *testing.T) {
	_, err := Builtin().Get("division")
	assert.ErrorIs(t, err, ErrLevelNotFound)
}

func TestLoadFS_Errors(t *testing.T) {
	valid := []byte("id: a\nname: A\ntest_cases:\n  - inputs: [[1]]\n    outputs: [[1]]\n")

	tests := []struct {
		name    string
		files   fstest.MapFS
		wantErr error
	}{
		{
			name: "duplicate id",
			files: fstest.MapFS{
				"x/1.yaml": {Data: valid},
				"x/2.yaml": {Data: valid},
			},
			wantErr: ErrDuplicateLevel,
		},
		{
			name: "no test cases",
			files: fstest.MapFS{
				"x/1.yaml": {Data: []byte("id: a\nname: A\n")},
			},
			wantErr: domain.ErrNoTestCases,
		},
		{
			name: "channel mismatch",
			files: fstest.MapFS{
				"x/1.yaml": {Data: []byte("id: a\ntest_cases:\n  - inputs: [[1]]\n    outputs: [[1]]\n  - inputs: [[1], [2]]\n    outputs: [[1]]\n")},
			},
			wantErr: domain.ErrChannelMismatch,
		},
		{
			name: "no expected outputs",
			files: fstest.MapFS{
				"x/1.yaml": {Data: []byte("id: a\ntest_cases:\n  - inputs: [[1]]\n    outputs: [[]]\n")},
			},
			wantErr: domain.ErrNoExpectedOutputs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFS(tt.files, "x/*.yaml")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("id: [unterminated"))
	assert.Error(t, err)

	_, err = Parse([]byte("name: no id\ntest_cases:\n  - inputs: []\n    outputs: [[1]]\n"))
	assert.Error(t, err)
}
