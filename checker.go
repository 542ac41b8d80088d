package mimekit

import "log/slog"

// SubclassPair declares that Child is a more specific refinement of Parent,
// e.g. {"application/json", "text/plain"}.
type SubclassPair struct {
	Child  string
	Parent string
}

// Checker is a single detection strategy. Implementations must be safe for
// concurrent use; the core never serializes predicate calls.
//
// Predicates receive the type identifier being tested so one checker can
// serve many types from shared state (a signature table, a rule database).
// A path predicate performs its own file I/O and must report an unreadable
// or missing file as a non-match rather than an error.
type Checker interface {
	// SupportedTypes returns the type identifiers this checker can test.
	SupportedTypes() []string

	// MatchBytes reports whether data matches typeID.
	MatchBytes(typeID string, data []byte) bool

	// MatchPath reports whether the file at path matches typeID.
	MatchPath(typeID string, path string) bool

	// SubclassPairs returns the subclass relations this checker declares.
	// Pairs may reference types outside SupportedTypes; relations whose
	// endpoints no checker supports are dropped during hierarchy assembly.
	SubclassPairs() []SubclassPair
}

// checkerTable is the dispatch layer: an ordered checker list plus the
// mapping from type identifier to the checker that owns it.
type checkerTable struct {
	checkers []Checker
	owner    map[string]int
}

// buildTable queries every checker's supported types once, in order. A type
// claimed by several checkers belongs to the one that claimed it last; the
// conflict is surfaced as a debug diagnostic, never an error.
func buildTable(checkers []Checker, logger *slog.Logger) *checkerTable {
	t := &checkerTable{
		checkers: checkers,
		owner:    make(map[string]int),
	}
	for i, c := range checkers {
		for _, id := range c.SupportedTypes() {
			if prev, ok := t.owner[id]; ok && prev != i && logger != nil {
				logger.Debug("type claimed by multiple checkers",
					"type", id, "previous", prev, "owner", i)
			}
			t.owner[id] = i
		}
	}
	return t
}

// matchBytes routes a single-type byte test to the owning checker.
// An unknown type identifier never matches.
func (t *checkerTable) matchBytes(typeID string, data []byte) bool {
	i, ok := t.owner[typeID]
	if !ok {
		return false
	}
	return t.checkers[i].MatchBytes(typeID, data)
}

// matchPath routes a single-type path test to the owning checker.
func (t *checkerTable) matchPath(typeID string, path string) bool {
	i, ok := t.owner[typeID]
	if !ok {
		return false
	}
	return t.checkers[i].MatchPath(typeID, path)
}
