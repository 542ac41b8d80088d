package mimekit

import "errors"

// Common detection errors
var (
	// ErrNoMatch is returned when a walk finds no matching type. For path
	// detection this includes unreadable and missing files, which checkers
	// report as plain non-matches.
	ErrNoMatch = errors.New("no matching type")

	// ErrNoCheckers is returned when a detector is built with no checkers
	// available, either explicitly or through registration.
	ErrNoCheckers = errors.New("no checkers registered")

	// ErrBrokenHierarchy is returned when byte classification from the root
	// finds no match. Fallback attachment makes byte classification total, so
	// this signals a misassembled checker set, not a property of the input.
	ErrBrokenHierarchy = errors.New("type hierarchy reached no match from the root")

	// ErrForeignNode is returned when a node handle from a different
	// hierarchy (or a nil node) is passed to one of the *From entry points.
	ErrForeignNode = errors.New("node does not belong to this hierarchy")
)

// IsNoMatch reports whether an error indicates that no type matched.
func IsNoMatch(err error) bool {
	return errors.Is(err, ErrNoMatch)
}
