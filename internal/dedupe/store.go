package dedupe

import "context"

// SubmissionPrefix namespaces submission ids so they can share a store with
// raw comment ids.
const SubmissionPrefix = "SUBMISSION_"

// Store tracks identifiers of items that have already been handled.
// Add takes effect immediately; Save persists the full set.
type Store interface {
	Contains(id string) bool
	Add(id string)
	Save(ctx context.Context) error
	Len() int
	Close() error
}

// SubmissionKey returns the store identifier for a submission id.
func SubmissionKey(id string) string {
	return SubmissionPrefix + id
}

// memSet is the in-memory half shared by the backends. It keeps insertion
// order so rewrites of the backing file are stable.
type memSet struct {
	ids   map[string]struct{}
	order []string
}

func newMemSet() memSet {
	return memSet{ids: map[string]struct{}{}}
}

func (m *memSet) contains(id string) bool {
	_, ok := m.ids[id]
	return ok
}

// add reports whether id was newly inserted.
func (m *memSet) add(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := m.ids[id]; ok {
		return false
	}
	m.ids[id] = struct{}{}
	m.order = append(m.order, id)
	return true
}
