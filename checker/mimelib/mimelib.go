// Package mimelib is a checker backed by github.com/gabriel-vasile/mimetype.
// It claims a curated set of common types and answers per-type tests by
// detecting the candidate and walking the library's own ancestor chain, so
// a DOCX stream matches application/zip as well as the DOCX type itself.
// Subclass relations are likewise derived from the library's hierarchy.
package mimelib

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/gobeaver/mimekit"
)

func init() {
	mimekit.RegisterChecker("mimelib", mimekit.RankMimelib,
		func(cfg *mimekit.Config) (mimekit.Checker, error) {
			return New(), nil
		})
}

// supported is the curated subset of the library's detectors exposed as
// claimable types. The library can detect far more; extend the list as
// callers need them.
var supported = []string{
	"image/png",
	"image/jpeg",
	"image/gif",
	"image/webp",
	"image/bmp",
	"image/tiff",
	"image/svg+xml",
	"application/pdf",
	"application/zip",
	"application/gzip",
	"application/x-tar",
	"application/x-7z-compressed",
	"application/x-rar-compressed",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"application/epub+zip",
	"application/jar",
	"application/json",
	"application/xml",
	"audio/mpeg",
	"audio/flac",
	"audio/wav",
	"audio/ogg",
	"video/mp4",
	"video/webm",
	"video/quicktime",
	"text/html",
	"text/csv",
	"text/plain",
	"application/octet-stream",
}

// Checker adapts the mimetype library to the checker contract.
type Checker struct{}

// New creates a mimetype-library checker.
func New() *Checker { return &Checker{} }

func (c *Checker) SupportedTypes() []string {
	return append([]string(nil), supported...)
}

// SubclassPairs derives child/parent pairs from the library's detection
// tree. Types the library does not know are skipped.
func (c *Checker) SubclassPairs() []mimekit.SubclassPair {
	var pairs []mimekit.SubclassPair
	for _, id := range supported {
		m := mimetype.Lookup(id)
		if m == nil {
			continue
		}
		parent := m.Parent()
		if parent == nil {
			continue
		}
		pairs = append(pairs, mimekit.SubclassPair{Child: id, Parent: bareType(parent.String())})
	}
	return pairs
}

// bareType strips media type parameters: the library reports text types as
// "text/plain; charset=utf-8" but hierarchy identifiers carry no params.
func bareType(id string) string {
	bare, _, _ := strings.Cut(id, ";")
	return strings.TrimSpace(bare)
}

// MatchBytes reports whether data's detected type, or any ancestor of it,
// is typeID.
func (c *Checker) MatchBytes(typeID string, data []byte) bool {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is(typeID) {
			return true
		}
	}
	return false
}

// MatchPath is MatchBytes over the file's contents. Unreadable files never
// match.
func (c *Checker) MatchPath(typeID string, path string) bool {
	detected, err := mimetype.DetectFile(path)
	if err != nil {
		return false
	}
	for m := detected; m != nil; m = m.Parent() {
		if m.Is(typeID) {
			return true
		}
	}
	return false
}
