package entities

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeDecodesOptionalFields(t *testing.T) {
	raw := `{
		"id": "n1",
		"type": "code",
		"status": "blocked",
		"complexity": {"storyPoints": 3},
		"content": {"todos": [{"text": "a"}, {"text": "b"}], "codeSnippets": ["x"], "references": []},
		"timeEstimate": {"estimated": 8}
	}`

	var node Node
	require.NoError(t, json.Unmarshal([]byte(raw), &node))

	sp, ok := node.StoryPoints()
	assert.True(t, ok)
	assert.Equal(t, 3.0, sp)

	est, ok := node.EstimatedTime()
	assert.True(t, ok)
	assert.Equal(t, 8.0, est)

	assert.Equal(t, 2, node.TodoCount())
	assert.Equal(t, 1, node.CodeSnippetCount())
	assert.Equal(t, 0, node.ReferenceCount())
	assert.True(t, node.IsBlocked())
	assert.False(t, node.IsCompleted())
}

func TestNodeDefaultsWhenFieldsAbsent(t *testing.T) {
	node := Node{ID: "bare"}

	_, ok := node.StoryPoints()
	assert.False(t, ok)
	assert.Equal(t, 1.0, node.StoryPointsOr(1))

	_, ok = node.EstimatedTime()
	assert.False(t, ok)

	assert.Zero(t, node.TodoCount())
	assert.Zero(t, node.CodeSnippetCount())
	assert.Zero(t, node.ReferenceCount())
}

func TestExplicitZeroStoryPointsIsKept(t *testing.T) {
	var node Node
	require.NoError(t, json.Unmarshal([]byte(`{"id":"z","complexity":{"storyPoints":0}}`), &node))

	assert.Equal(t, 0.0, node.StoryPointsOr(1))
}

func TestIndexNodesLastDuplicateWins(t *testing.T) {
	index := IndexNodes([]Node{
		{ID: "a", Title: "first"},
		{ID: "b"},
		{ID: "a", Title: "second"},
	})

	assert.Len(t, index, 2)
	assert.Equal(t, "second", index["a"].Title)
}

func TestTimeRange(t *testing.T) {
	day := int64(24 * time.Hour / time.Millisecond)
	r := TimeRange{Start: 1000, End: 1000 + 2*day}

	assert.Equal(t, 2.0, r.Days())
	assert.True(t, r.Contains(1000))
	assert.True(t, r.Contains(1000+2*day))
	assert.False(t, r.Contains(999))
}

func TestTimelineEvent(t *testing.T) {
	e := TimelineEvent{Type: EventNodeCompleted, NodeID: "a", Timestamp: 0}

	assert.True(t, e.IsCompletion())
	assert.Equal(t, "1970-01-01", e.Time().Format("2006-01-02"))
}
