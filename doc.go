// Package mimekit identifies the content type (MIME type) of a byte stream
// or file by testing it against a hierarchy of known type signatures and
// returning the most specific matching type. Detection looks only at content,
// never at file names or extensions.
//
// # Checkers
//
// Detection strategies are pluggable checkers. A checker declares the type
// identifiers it can test, a byte predicate, a path predicate, and the
// subclass relations between its types. MimeKit ships four checkers as
// separate packages, each registering itself on import:
//
//   - Freedesktop magic database (github.com/gobeaver/mimekit/checker/fdo)
//   - Embedded signature table (github.com/gobeaver/mimekit/checker/magic)
//   - mimetype library adapter (github.com/gobeaver/mimekit/checker/mimelib)
//   - Basic types: inodes, text, empty (github.com/gobeaver/mimekit/checker/basetype)
//
// Import the checkers you want, then detect:
//
//	import (
//	    "github.com/gobeaver/mimekit"
//
//	    _ "github.com/gobeaver/mimekit/checker/basetype"
//	    _ "github.com/gobeaver/mimekit/checker/magic"
//	)
//
//	mime, err := mimekit.DetectBytes(data)
//	mime, err = mimekit.DetectPath("/tmp/upload.bin")
//
// If two checkers claim the same type identifier, the one instantiated later
// owns it. This is deliberate: the basic-type checker registers with the
// highest rank so it always has the last word on the universal fallbacks.
//
// # The type hierarchy
//
// All declared types are assembled once, on first use, into a directed
// subclass hierarchy rooted at "all/all". Types that no checker parented are
// attached to "text/plain", "all/all" or "application/octet-stream" based on
// their top-level media segment, so every classification is total: a byte
// stream always classifies to at least a generic fallback.
//
// Classification walks the hierarchy from the root, descending into the first
// matching child at each level and returning the deepest confirmed type. A
// fixed list of common, easily confused types (PNG, JPEG, GIF, ZIP, DOS
// executables, PDF) is always tested ahead of other siblings. The walk is
// greedy and does not backtrack across sibling subtrees; for candidates that
// genuinely match two unrelated siblings (office files are valid ZIPs), the
// declared subclass relations and the priority list decide the outcome.
//
// Callers that already know a broad category can refine from any node:
//
//	h, _ := mimekit.Default().Hierarchy()
//	if node, ok := h.Lookup("application/zip"); ok {
//	    mime, err := mimekit.Default().DetectBytesFrom(node, data)
//	}
//
// The hierarchy is immutable after construction and safe for concurrent use.
package mimekit
