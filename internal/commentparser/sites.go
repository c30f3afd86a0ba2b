package commentparser

import (
	"fmt"
	"net/url"
	"regexp"
)

type site struct {
	key       string
	name      string
	storyURL  string
	searchURL func(query string) string
	urlID     *regexp.Regexp
}

func googleSearch(domain string) func(string) string {
	return func(query string) string {
		return "https://www.google.com/search?q=" + url.QueryEscape("site:"+domain+" "+query)
	}
}

var sites = []site{
	{
		key:       "ffn",
		name:      "FanFiction.Net",
		storyURL:  "https://www.fanfiction.net/s/%s/1/",
		searchURL: googleSearch("fanfiction.net/s/"),
		urlID:     regexp.MustCompile(`(?i)fanfiction\.net/s/(\d+)`),
	},
	{
		key:      "ao3",
		name:     "Archive of Our Own",
		storyURL: "https://archiveofourown.org/works/%s",
		searchURL: func(query string) string {
			return "https://archiveofourown.org/works/search?" + url.Values{"work_search[query]": {query}}.Encode()
		},
		urlID: regexp.MustCompile(`(?i)archiveofourown\.org/works/(\d+)`),
	},
	{
		key:       "ffa",
		name:      "HPFanficArchive",
		storyURL:  "http://www.hpfanficarchive.com/stories/viewstory.php?sid=%s",
		searchURL: googleSearch("hpfanficarchive.com"),
		urlID:     regexp.MustCompile(`(?i)hpfanficarchive\.com/stories/viewstory\.php\?sid=(\d+)`),
	},
	{
		key:       "fp",
		name:      "FictionPress",
		storyURL:  "https://www.fictionpress.com/s/%s/1/",
		searchURL: googleSearch("fictionpress.com/s/"),
		urlID:     regexp.MustCompile(`(?i)fictionpress\.com/s/(\d+)`),
	},
	{
		key:       "aff",
		name:      "AdultFanFiction",
		storyURL:  "http://hp.adult-fanfiction.org/story.php?no=%s",
		searchURL: googleSearch("adult-fanfiction.org"),
		urlID:     regexp.MustCompile(`(?i)adult-fanfiction\.org/story\.php\?no=(\d+)`),
	},
}

func siteByKey(key string) (site, bool) {
	for _, s := range sites {
		if s.key == key {
			return s, true
		}
	}
	return site{}, false
}

func (s site) request(id string) string {
	return fmt.Sprintf("link%s(%s)", s.key, id)
}
