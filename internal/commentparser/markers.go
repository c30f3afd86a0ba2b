// Package commentparser turns comment and submission text into reply text.
// Everything here is a pure function of its inputs.
package commentparser

import (
	"regexp"
	"strings"
)

const (
	MarkerIgnore         = "ignore"
	MarkerSubmissionLink = "submissionlink"
	MarkerDirectLinks    = "directlinks"
	MarkerNoDistinct     = "nodistinct"
)

// Markers maps directive names (lower case) to their optional value.
type Markers map[string]string

func (m Markers) Has(name string) bool {
	if m == nil {
		return false
	}
	_, ok := m[strings.ToLower(name)]
	return ok
}

var markerPattern = regexp.MustCompile(`(?i)ffnbot!([a-z_]+)(?::([^\s;]+))?`)

// ParseMarkers extracts ffnbot!name and ffnbot!name:value directives.
func ParseMarkers(body string) Markers {
	markers := Markers{}
	for _, m := range markerPattern.FindAllStringSubmatch(body, -1) {
		markers[strings.ToLower(m[1])] = m[2]
	}
	return markers
}
