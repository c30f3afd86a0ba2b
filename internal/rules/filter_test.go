package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterSkip(t *testing.T) {
	f, err := NewFilter(`author == "AutoModerator" || (kind == "comment" && body.length > 20)`)
	require.NoError(t, err)

	cases := []struct {
		item Item
		want bool
	}{
		{Item{Kind: "submission", Author: "AutoModerator"}, true},
		{Item{Kind: "comment", Author: "someone", Body: "short"}, false},
		{Item{Kind: "comment", Author: "someone", Body: "this body is definitely long enough"}, true},
		{Item{Kind: "submission", Author: "someone", Body: "this body is definitely long enough"}, false},
	}
	for _, tc := range cases {
		got, err := f.Skip(tc.item)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%+v", tc.item)
	}
}

func TestFilterSubredditAndTitle(t *testing.T) {
	f, err := NewFilter(`subreddit == "HPMOR" && title.value contains "[Meta]"`)
	require.NoError(t, err)
	skip, err := f.Skip(Item{Subreddit: "HPMOR", Title: "[Meta] rules update"})
	require.NoError(t, err)
	assert.True(t, skip)
}

func TestEmptyFilterMatchesNothing(t *testing.T) {
	f, err := NewFilter("  ")
	require.NoError(t, err)
	assert.Nil(t, f)
	skip, err := f.Skip(Item{Author: "AutoModerator"})
	require.NoError(t, err)
	assert.False(t, skip)
	assert.Equal(t, "", f.String())
}

func TestNewFilterRejectsInvalidRule(t *testing.T) {
	_, err := NewFilter("author ==")
	assert.Error(t, err)
}
