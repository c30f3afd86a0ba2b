package subreddit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name        string
		useDefaults bool
		user        string
		want        []string
	}{
		{name: "empty falls back to placeholder", want: []string{Placeholder}},
		{name: "defaults only", useDefaults: true, want: []string{"HPFanfiction", "HPMOR", "fanfiction"}},
		{name: "user list trimmed", user: " HPFanfiction , r/HPMOR,,/r/fanfiction ", want: []string{"HPFanfiction", "HPMOR", "fanfiction"}},
		{name: "defaults ignored unless requested", user: "golang", want: []string{"golang"}},
		{name: "merge dedupes", useDefaults: true, user: "HPMOR,golang", want: []string{"HPFanfiction", "HPMOR", "fanfiction", "golang"}},
		{name: "only separators", user: " , ,", want: []string{Placeholder}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Resolve(Defaults, tc.useDefaults, tc.user)
			assert.Equal(t, tc.want, got.Names())
			assert.Equal(t, len(tc.want), got.Len())
		})
	}
}

func TestNamesReturnsCopy(t *testing.T) {
	reg := Resolve(nil, false, "a,b")
	names := reg.Names()
	names[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, reg.Names())
	assert.Equal(t, "a,b", reg.String())
}
