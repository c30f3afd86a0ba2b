// Package subreddit resolves the set of subreddits a run monitors.
package subreddit

import (
	"sort"
	"strings"
)

// Placeholder is monitored when nothing else was configured.
const Placeholder = "tusingtestfield"

// Defaults is the built-in set added when the operator asks for defaults.
var Defaults = []string{"HPFanfiction", "fanfiction", "HPMOR"}

// Registry is an immutable, duplicate-free set of subreddit names.
type Registry struct {
	names []string
}

// Resolve merges defaults (only when useDefaults is set) with the
// comma-separated user list. An empty result falls back to Placeholder.
func Resolve(defaults []string, useDefaults bool, user string) Registry {
	seen := map[string]struct{}{}
	var names []string
	add := func(raw string) {
		name := normalize(raw)
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	if useDefaults {
		for _, name := range defaults {
			add(name)
		}
	}
	for _, name := range strings.Split(user, ",") {
		add(name)
	}
	if len(names) == 0 {
		add(Placeholder)
	}
	sort.Strings(names)
	return Registry{names: names}
}

// Names returns a sorted copy of the registry contents.
func (r Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

func (r Registry) Len() int {
	return len(r.names)
}

func (r Registry) String() string {
	return strings.Join(r.names, ",")
}

func normalize(raw string) string {
	name := strings.TrimSpace(raw)
	name = strings.TrimPrefix(name, "/")
	if len(name) > 2 && strings.EqualFold(name[:2], "r/") {
		name = name[2:]
	}
	return strings.TrimSpace(name)
}
