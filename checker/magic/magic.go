// Package magic is a checker backed by an embedded table of fixed byte
// signatures. It covers the common image, archive, document, media, font and
// executable formats, plus content refinements for the container formats
// that share a signature (RIFF, ZIP).
package magic

import (
	"bytes"
	"io"
	"os"

	"github.com/gobeaver/mimekit"
)

func init() {
	mimekit.RegisterChecker("magic", mimekit.RankMagic,
		func(cfg *mimekit.Config) (mimekit.Checker, error) {
			return New(cfg.SniffSize), nil
		})
}

// Signature defines a fixed byte pattern for one type.
type Signature struct {
	Type   string
	Offset int    // Offset from start of file
	Magic  []byte // Magic bytes to match
}

// signatures contains the embedded file signatures.
var signatures = []Signature{
	// Images
	{Type: "image/jpeg", Offset: 0, Magic: []byte{0xFF, 0xD8, 0xFF}},
	{Type: "image/png", Offset: 0, Magic: []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	{Type: "image/gif", Offset: 0, Magic: []byte("GIF87a")},
	{Type: "image/gif", Offset: 0, Magic: []byte("GIF89a")},
	{Type: "image/bmp", Offset: 0, Magic: []byte("BM")},
	{Type: "image/tiff", Offset: 0, Magic: []byte{0x49, 0x49, 0x2A, 0x00}}, // Little endian
	{Type: "image/tiff", Offset: 0, Magic: []byte{0x4D, 0x4D, 0x00, 0x2A}}, // Big endian
	{Type: "image/x-icon", Offset: 0, Magic: []byte{0x00, 0x00, 0x01, 0x00}},

	// Documents
	{Type: "application/pdf", Offset: 0, Magic: []byte("%PDF-")},

	// Archives
	{Type: "application/zip", Offset: 0, Magic: []byte{0x50, 0x4B, 0x03, 0x04}},
	{Type: "application/zip", Offset: 0, Magic: []byte{0x50, 0x4B, 0x05, 0x06}}, // Empty ZIP
	{Type: "application/zip", Offset: 0, Magic: []byte{0x50, 0x4B, 0x07, 0x08}}, // Spanned ZIP
	{Type: "application/gzip", Offset: 0, Magic: []byte{0x1F, 0x8B}},
	{Type: "application/x-tar", Offset: 257, Magic: []byte("ustar")}, // POSIX tar
	{Type: "application/x-rar-compressed", Offset: 0, Magic: []byte("Rar!\x1a\x07\x00")},
	{Type: "application/x-rar-compressed", Offset: 0, Magic: []byte("Rar!\x1a\x07\x01\x00")}, // RAR5
	{Type: "application/x-7z-compressed", Offset: 0, Magic: []byte{'7', 'z', 0xBC, 0xAF, 0x27, 0x1C}},
	{Type: "application/x-bzip2", Offset: 0, Magic: []byte("BZh")},
	{Type: "application/x-xz", Offset: 0, Magic: []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}},

	// Audio
	{Type: "audio/mpeg", Offset: 0, Magic: []byte("ID3")},      // MP3 with ID3
	{Type: "audio/mpeg", Offset: 0, Magic: []byte{0xFF, 0xFB}}, // MP3 frame sync
	{Type: "audio/mpeg", Offset: 0, Magic: []byte{0xFF, 0xFA}},
	{Type: "audio/mpeg", Offset: 0, Magic: []byte{0xFF, 0xF3}},
	{Type: "audio/mpeg", Offset: 0, Magic: []byte{0xFF, 0xF2}},
	{Type: "audio/flac", Offset: 0, Magic: []byte("fLaC")},
	{Type: "audio/ogg", Offset: 0, Magic: []byte("OggS")},
	{Type: "audio/midi", Offset: 0, Magic: []byte("MThd")},

	// Video
	{Type: "video/webm", Offset: 0, Magic: []byte{0x1A, 0x45, 0xDF, 0xA3}},       // EBML
	{Type: "video/x-matroska", Offset: 0, Magic: []byte{0x1A, 0x45, 0xDF, 0xA3}}, // MKV uses same header
	{Type: "video/mp4", Offset: 4, Magic: []byte("ftyp")},
	{Type: "video/x-flv", Offset: 0, Magic: []byte("FLV")},

	// Text markup
	{Type: "text/html", Offset: 0, Magic: []byte("<!DOCTYPE html")},
	{Type: "text/html", Offset: 0, Magic: []byte("<!doctype html")},
	{Type: "text/html", Offset: 0, Magic: []byte("<html")},
	{Type: "application/xml", Offset: 0, Magic: []byte("<?xml")},

	// Executables
	{Type: "application/x-msdos-executable", Offset: 0, Magic: []byte("MZ")},
	{Type: "application/x-executable", Offset: 0, Magic: []byte{0x7F, 'E', 'L', 'F'}},
	{Type: "application/x-mach-binary", Offset: 0, Magic: []byte{0xCF, 0xFA, 0xED, 0xFE}},
	{Type: "application/x-mach-binary", Offset: 0, Magic: []byte{0xCE, 0xFA, 0xED, 0xFE}},

	// Fonts
	{Type: "font/woff", Offset: 0, Magic: []byte("wOFF")},
	{Type: "font/woff2", Offset: 0, Magic: []byte("wOF2")},
	{Type: "font/otf", Offset: 0, Magic: []byte("OTTO")},
	{Type: "font/ttf", Offset: 0, Magic: []byte{0x00, 0x01, 0x00, 0x00}},
}

// refinements are predicates for formats that share a container signature
// and need a look inside: RIFF subformats carry their tag at offset 8, and
// ZIP-based formats are told apart by entry names near the front of the
// archive.
var refinements = map[string]func(data []byte) bool{
	"audio/wav":        riffFormat("WAVE"),
	"video/x-msvideo":  riffFormat("AVI "),
	"image/webp":       riffFormat("WEBP"),
	"audio/mp4":        ftypBrand("M4A "),
	"video/quicktime":  ftypBrand("qt  "),
	"image/svg+xml":    containsMarker("<svg"),
	docxType:           zipWithMarker("word/"),
	xlsxType:           zipWithMarker("xl/"),
	pptxType:           zipWithMarker("ppt/"),
	"application/epub+zip": zipWithMarker("mimetypeapplication/epub+zip"),
	"application/x-java-archive": zipWithMarker("META-INF/"),
}

const (
	docxType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pptxType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// refinedTypes fixes the declaration order of refinement-only types so the
// hierarchy sees them in a stable order.
var refinedTypes = []string{
	"audio/wav",
	"video/x-msvideo",
	"image/webp",
	"audio/mp4",
	"video/quicktime",
	"image/svg+xml",
	docxType,
	xlsxType,
	pptxType,
	"application/epub+zip",
	"application/x-java-archive",
}

// subclassPairs declares how the refined formats specialize their containers.
var subclassPairs = []mimekit.SubclassPair{
	{Child: docxType, Parent: "application/zip"},
	{Child: xlsxType, Parent: "application/zip"},
	{Child: pptxType, Parent: "application/zip"},
	{Child: "application/epub+zip", Parent: "application/zip"},
	{Child: "application/x-java-archive", Parent: "application/zip"},
	{Child: "text/html", Parent: "text/plain"},
	{Child: "application/xml", Parent: "text/plain"},
	{Child: "image/svg+xml", Parent: "application/xml"},
	{Child: "audio/mp4", Parent: "video/mp4"},
	{Child: "video/quicktime", Parent: "video/mp4"},
}

// Checker matches types against the embedded signature table.
type Checker struct {
	sniff int
	sigs  map[string][]Signature
	types []string // declaration order
}

// New creates a signature checker. sniff bounds how much of a file is read;
// <=0 uses 8 KiB.
func New(sniff int) *Checker {
	if sniff <= 0 {
		sniff = 8192
	}
	c := &Checker{
		sniff: sniff,
		sigs:  make(map[string][]Signature),
	}
	for _, sig := range signatures {
		if _, ok := c.sigs[sig.Type]; !ok {
			c.types = append(c.types, sig.Type)
		}
		c.sigs[sig.Type] = append(c.sigs[sig.Type], sig)
	}
	for _, id := range refinedTypes {
		if _, ok := c.sigs[id]; !ok {
			c.types = append(c.types, id)
		}
	}
	return c
}

func (c *Checker) SupportedTypes() []string {
	return append([]string(nil), c.types...)
}

func (c *Checker) SubclassPairs() []mimekit.SubclassPair {
	return append([]mimekit.SubclassPair(nil), subclassPairs...)
}

func (c *Checker) MatchBytes(typeID string, data []byte) bool {
	if len(data) > c.sniff {
		data = data[:c.sniff]
	}
	if refine, ok := refinements[typeID]; ok {
		return refine(data)
	}
	for _, sig := range c.sigs[typeID] {
		if sig.match(data) {
			return true
		}
	}
	return false
}

func (c *Checker) MatchPath(typeID string, path string) bool {
	head, err := c.readHeader(path)
	if err != nil {
		return false
	}
	return c.MatchBytes(typeID, head)
}

func (c *Checker) readHeader(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, c.sniff)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return buf[:n], nil
}

func (s Signature) match(data []byte) bool {
	if s.Offset+len(s.Magic) > len(data) {
		return false
	}
	return bytes.Equal(data[s.Offset:s.Offset+len(s.Magic)], s.Magic)
}

func riffFormat(tag string) func([]byte) bool {
	return func(data []byte) bool {
		if len(data) < 12 || !bytes.HasPrefix(data, []byte("RIFF")) {
			return false
		}
		return string(data[8:12]) == tag
	}
}

func ftypBrand(brand string) func([]byte) bool {
	return func(data []byte) bool {
		if len(data) < 12 || string(data[4:8]) != "ftyp" {
			return false
		}
		return string(data[8:12]) == brand
	}
}

func zipWithMarker(marker string) func([]byte) bool {
	zipSig := []byte{0x50, 0x4B, 0x03, 0x04}
	return func(data []byte) bool {
		return bytes.HasPrefix(data, zipSig) && bytes.Contains(data, []byte(marker))
	}
}

func containsMarker(marker string) func([]byte) bool {
	return func(data []byte) bool {
		return bytes.Contains(data, []byte(marker))
	}
}
