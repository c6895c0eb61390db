package curriculum

import (
	"testing"

	"learnpath-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse_FenceStripping(t *testing.T) {
	input := "```json\n{\"title\":\"T\",\"description\":\"D\",\"children\":[]}\n```"

	tree := ParseResponse(input)

	require.NotNil(t, tree)
	assert.Equal(t, "T", tree.Title)
	assert.Equal(t, "D", tree.Description)
	assert.Empty(t, tree.Children)
	assert.Equal(t, 0, tree.Depth)
	assert.Nil(t, tree.ParentID)
}

func TestParseResponse_UntaggedFence(t *testing.T) {
	input := "```\n{\"title\":\"T\",\"description\":\"D\"}\n```"

	tree := ParseResponse(input)
	assert.Equal(t, "T", tree.Title)
}

func TestParseResponse_JSONWrappedInProse(t *testing.T) {
	input := "Here is your curriculum:\n{\"title\":\"Go\",\"description\":\"Learn Go\",\"children\":[{\"title\":\"Basics\",\"description\":\"Syntax\"}]}\nHappy learning!"

	tree := ParseResponse(input)

	assert.Equal(t, "Go", tree.Title)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "Basics", tree.Children[0].Title)
}

func TestParseResponse_FallbackDeterminism(t *testing.T) {
	// 非 JSON 输入每次都得到同一棵三分支默认树
	for i := 0; i < 3; i++ {
		tree := ParseResponse("not json at all")

		require.NotNil(t, tree)
		assert.Equal(t, "Learning Path", tree.Title)
		assert.Equal(t, "Your personalized learning curriculum", tree.Description)
		require.Len(t, tree.Children, 3)
		assert.Equal(t, "Fundamentals", tree.Children[0].Title)
		assert.Equal(t, "Intermediate Concepts", tree.Children[1].Title)
		assert.Equal(t, "Advanced Topics", tree.Children[2].Title)
		for _, child := range tree.Children {
			assert.Empty(t, child.Children)
		}
	}
}

func TestParseResponse_DefaultsForMissingFields(t *testing.T) {
	tree := ParseResponse(`{"children":[{"description":"no title here"}]}`)

	assert.Equal(t, "Untitled", tree.Title)
	assert.Equal(t, "", tree.Description)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "Untitled", tree.Children[0].Title)
}

func TestParseResponse_DepthInvariant(t *testing.T) {
	input := `{"title":"L0","description":"","children":[
		{"title":"L1a","description":"","children":[
			{"title":"L2","description":"","children":[
				{"title":"L3","description":"","children":[]}
			]}
		]},
		{"title":"L1b","description":"","children":[]}
	]}`

	tree := ParseResponse(input)

	assert.Equal(t, 0, tree.Depth)
	assert.Nil(t, tree.ParentID)
	var check func(n *model.CurriculumNode)
	check = func(n *model.CurriculumNode) {
		for _, child := range n.Children {
			assert.Equal(t, n.Depth+1, child.Depth)
			require.NotNil(t, child.ParentID)
			assert.Equal(t, n.ID, *child.ParentID)
			check(child)
		}
	}
	check(tree)
}

func TestParseResponse_IDUniqueness(t *testing.T) {
	input := `{"title":"Root","description":"","children":[
		{"title":"A","description":"","children":[{"title":"A1","description":""}]},
		{"title":"B","description":"","children":[{"title":"B1","description":""}]}
	]}`

	tree := ParseResponse(input)

	seen := make(map[string]bool)
	for _, node := range Flatten(tree) {
		assert.NotEmpty(t, node.ID)
		assert.False(t, seen[node.ID], "duplicate id %s", node.ID)
		seen[node.ID] = true
	}
	assert.Len(t, seen, 5)
}

func TestParseResponse_AllNodesNotStarted(t *testing.T) {
	tree := ParseResponse(`{"title":"Root","description":"","children":[{"title":"A","description":""}]}`)

	for _, node := range Flatten(tree) {
		assert.Equal(t, model.StatusNotStarted, node.Status)
	}
}

func TestParseResponse_ChildOrderPreserved(t *testing.T) {
	tree := ParseResponse(`{"title":"Root","description":"","children":[
		{"title":"First","description":""},
		{"title":"Second","description":""},
		{"title":"Third","description":""}
	]}`)

	require.Len(t, tree.Children, 3)
	assert.Equal(t, "First", tree.Children[0].Title)
	assert.Equal(t, "Second", tree.Children[1].Title)
	assert.Equal(t, "Third", tree.Children[2].Title)
}
