package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/adriangreen/tm-list/internal/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() tasks.Sequence {
	return tasks.Sequence{
		{Description: "buy milk", Completed: false, Position: 0},
		{Description: "call *mum*", Completed: true, Position: 1},
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sample(), "Today")

	assert.Equal(t, "# Today\n\n- [ ] buy milk\n- [x] call \\*mum\\*\n\n1 open, 1 done\n", md)
}

func TestMarkdownEmpty(t *testing.T) {
	assert.Contains(t, Markdown(tasks.Sequence{}, ""), "Nothing to do")
}

func TestJSONMatchesPersistedShape(t *testing.T) {
	raw, err := Render(sample(), "json", "")
	require.NoError(t, err)

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "call *mum*", got[1]["description"])
	assert.Equal(t, true, got[1]["completed"])
	assert.Equal(t, float64(1), got[1]["position"])
}

func TestPDF(t *testing.T) {
	raw, err := Render(sample(), "PDF", "Today")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF-")))
}

func TestUnknownFormat(t *testing.T) {
	_, err := Render(sample(), "docx", "")
	assert.Error(t, err)
}
