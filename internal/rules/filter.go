package rules

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Item is the view of a submission or comment a skip rule is evaluated
// against.
type Item struct {
	Kind      string
	ID        string
	Subreddit string
	Author    string
	Title     string
	URL       string
	Body      string
}

// Filter skips items matching an expr-lang boolean expression, e.g.
// `author == "AutoModerator" || body.length > 5000`.
type Filter struct {
	rule    string
	program *vm.Program
}

// NewFilter compiles rule. An empty rule yields a nil Filter, which matches
// nothing.
func NewFilter(rule string) (*Filter, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return nil, nil
	}
	program, err := expr.Compile(rule, expr.Env(itemEnv(Item{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile skip rule: %w", err)
	}
	return &Filter{rule: rule, program: program}, nil
}

func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.rule
}

// Skip reports whether item matches the rule.
func (f *Filter) Skip(item Item) (bool, error) {
	if f == nil {
		return false, nil
	}
	result, err := expr.Run(f.program, itemEnv(item))
	if err != nil {
		return false, fmt.Errorf("evaluate skip rule: %w", err)
	}
	matched, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("skip rule did not return bool")
	}
	return matched, nil
}

func itemEnv(item Item) map[string]interface{} {
	return map[string]interface{}{
		"kind":      item.Kind,
		"id":        item.ID,
		"subreddit": item.Subreddit,
		"author":    item.Author,
		"url":       item.URL,
		"title": map[string]interface{}{
			"value":  item.Title,
			"length": len(item.Title),
		},
		"body": map[string]interface{}{
			"value":  item.Body,
			"length": len(item.Body),
		},
	}
}
