package commentparser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMarkers(t *testing.T) {
	markers := ParseMarkers("please FFNBOT!Ignore and ffnbot!submissionlink ffnbot!limit:3;")
	assert.True(t, markers.Has(MarkerIgnore))
	assert.True(t, markers.Has(MarkerSubmissionLink))
	assert.Equal(t, "3", markers["limit"])
	assert.False(t, markers.Has(MarkerDirectLinks))

	assert.Empty(t, ParseMarkers("no directives here"))
	var nilMarkers Markers
	assert.False(t, nilMarkers.Has(MarkerIgnore))
}

func TestDirectLinks(t *testing.T) {
	cases := map[string][]string{
		"https://www.fanfiction.net/s/5782108/1/Harry-Potter":              {"linkffn(5782108)"},
		"http://archiveofourown.org/works/123456/chapters/1":               {"linkao3(123456)"},
		"https://m.fictionpress.com/s/2961893/1/":                          {"linkfp(2961893)"},
		"http://www.hpfanficarchive.com/stories/viewstory.php?sid=42":      {"linkffa(42)"},
		"http://hp.adult-fanfiction.org/story.php?no=600012345":            {"linkaff(600012345)"},
		"https://www.reddit.com/r/HPFanfiction/comments/abc/some_request/": nil,
	}
	for in, want := range cases {
		assert.Equal(t, want, DirectLinks(in), in)
	}
}

func TestFormulateReplyRendersRequests(t *testing.T) {
	reply := FormulateReply("ffnbot!linkffn(Harry Potter; 5782108);linkao3(123)", nil, nil)
	lines := strings.Split(reply, "\n\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "**FanFiction.Net** search for *Harry Potter*")
	assert.Contains(t, lines[0], "https://www.google.com/search?q=site%3Afanfiction.net%2Fs%2F+Harry+Potter")
	assert.Equal(t, "**FanFiction.Net** story 5782108: [5782108](https://www.fanfiction.net/s/5782108/1/)", lines[1])
	assert.Equal(t, "**Archive of Our Own** story 123: [123](https://archiveofourown.org/works/123)", lines[2])
	assert.Greater(t, len(reply), 10)
}

func TestFormulateReplyDistinctByDefault(t *testing.T) {
	body := "linkffn(1) linkffn(1)"
	assert.Len(t, strings.Split(FormulateReply(body, nil, nil), "\n\n"), 1)
	assert.Len(t, strings.Split(FormulateReply(body, Markers{MarkerNoDistinct: ""}, nil), "\n\n"), 2)
}

func TestFormulateReplyAdditionsAndDirectLinks(t *testing.T) {
	reply := FormulateReply("", nil, []string{"linkfp(7)"})
	assert.Contains(t, reply, "https://www.fictionpress.com/s/7/1/")

	body := "read https://www.fanfiction.net/s/99/1/ please"
	assert.Empty(t, FormulateReply(body, nil, nil))
	assert.Contains(t, FormulateReply(body, Markers{MarkerDirectLinks: ""}, nil), "https://www.fanfiction.net/s/99/1/")
}

func TestFormulateReplyEmpty(t *testing.T) {
	assert.Equal(t, "", FormulateReply("just chatting", nil, nil))
	assert.Equal(t, "", FormulateReply("linkffn( ; )", nil, nil))
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `a\*b\_c`, escapeMarkdown("a*b_c"))
}

func TestFormulateReplyParsesMarkersFromBodyWhenNil(t *testing.T) {
	assert.Empty(t, FormulateReply("ffnbot!ignore linkffn(12345)", nil, nil))

	reply := FormulateReply("ffnbot!directlinks https://www.fanfiction.net/s/999/1/", nil, nil)
	assert.Contains(t, reply, "https://www.fanfiction.net/s/999/1/")

	body := "ffnbot!nodistinct linkffn(1) linkffn(1)"
	assert.Len(t, strings.Split(FormulateReply(body, nil, nil), "\n\n"), 2)
}

func TestFormulateReplyExplicitMarkersWin(t *testing.T) {
	assert.Empty(t, FormulateReply("linkffn(12345)", Markers{MarkerIgnore: ""}, nil))
	assert.NotEmpty(t, FormulateReply("ffnbot!ignore linkffn(12345)", Markers{}, nil))
}
