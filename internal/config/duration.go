package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that decodes from YAML strings such as "20s",
// "1d" or "1w2d", or from a bare integer number of seconds.
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", node.Line)
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(node.Value)); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	parsed, err := parseDurationExtended(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

var dayWeekTerm = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)([dw])`)

// parseDurationExtended accepts Go duration strings plus d (24h) and w (7d)
// units, e.g. "7d", "1w2d3h", "1.5d", "-2w".
func parseDurationExtended(raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("duration is required")
	}
	if !strings.ContainsAny(s, "dw") {
		return time.ParseDuration(s)
	}

	var convErr error
	expanded := dayWeekTerm.ReplaceAllStringFunc(s, func(term string) string {
		m := dayWeekTerm.FindStringSubmatch(term)
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			convErr = err
			return term
		}
		hours := n * 24
		if m[2] == "w" {
			hours *= 7
		}
		return strconv.FormatFloat(hours, 'f', -1, 64) + "h"
	})
	if convErr != nil {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	d, err := time.ParseDuration(expanded)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	return d, nil
}
