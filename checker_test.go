package mimekit

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestBuildTableLastRegistrationWins(t *testing.T) {
	first := &stubChecker{types: []string{"image/png", "image/gif"}}
	second := &stubChecker{types: []string{"image/png"}}

	table := buildTable([]Checker{first, second}, nil)

	if got := table.owner["image/png"]; got != 1 {
		t.Errorf("image/png owned by checker %d, want 1", got)
	}
	if got := table.owner["image/gif"]; got != 0 {
		t.Errorf("image/gif owned by checker %d, want 0", got)
	}
}

func TestDispatchUnknownTypeNeverMatches(t *testing.T) {
	table := buildTable([]Checker{
		&stubChecker{
			types:   []string{"image/png"},
			bytesFn: func(string, []byte) bool { return true },
			pathFn:  func(string, string) bool { return true },
		},
	}, nil)

	if table.matchBytes("application/x-nope", []byte("data")) {
		t.Error("matchBytes matched an unknown type")
	}
	if table.matchPath("application/x-nope", "/tmp/whatever") {
		t.Error("matchPath matched an unknown type")
	}
}

func TestDispatchRoutesToOwner(t *testing.T) {
	var calls []string
	mk := func(name string) *stubChecker {
		return &stubChecker{
			types: []string{"image/png"},
			bytesFn: func(typeID string, _ []byte) bool {
				calls = append(calls, name+":"+typeID)
				return true
			},
		}
	}

	table := buildTable([]Checker{mk("first"), mk("second")}, nil)
	if !table.matchBytes("image/png", nil) {
		t.Fatal("matchBytes = false, want true")
	}
	if len(calls) != 1 || calls[0] != "second:image/png" {
		t.Errorf("calls = %v, want [second:image/png]", calls)
	}
}

func TestBuildTableLogsOwnershipConflicts(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	buildTable([]Checker{
		&stubChecker{types: []string{"image/png"}},
		&stubChecker{types: []string{"image/png"}},
	}, logger)

	if !strings.Contains(buf.String(), "type claimed by multiple checkers") {
		t.Errorf("conflict not logged; log output: %q", buf.String())
	}
}
