package reddit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlattenParentBeforeChildren(t *testing.T) {
	tree := []*Comment{
		{ID: "a", Replies: []*Comment{
			{ID: "a1", Replies: []*Comment{{ID: "a1x"}}},
			{ID: "a2"},
		}},
		nil,
		{ID: "b"},
	}

	flat := Flatten(tree)
	ids := make([]string, 0, len(flat))
	for _, c := range flat {
		ids = append(ids, c.ID)
		assert.Nil(t, c.Replies)
	}
	assert.Equal(t, []string{"a", "a1", "a1x", "a2", "b"}, ids)
}

func TestFlattenEmitsEachCommentOnce(t *testing.T) {
	shared := &Comment{ID: "dup"}
	tree := []*Comment{
		{ID: "a", Replies: []*Comment{shared}},
		shared,
	}
	flat := Flatten(tree)
	assert.Len(t, flat, 2)
}

func TestFlattenEmpty(t *testing.T) {
	assert.Empty(t, Flatten(nil))
}
