// Package basetype implements the fixed basic types every hierarchy needs:
// the universal fallbacks, the inode types, empty files, and a plain-text
// heuristic. It has no signature database; every predicate is structural.
//
// Importing the package registers it with mimekit at the highest built-in
// rank, so it always owns the fallback types regardless of what other
// checkers claim.
package basetype

import (
	"bytes"
	"io"
	"os"
	"unicode/utf8"

	"github.com/gobeaver/mimekit"
)

func init() {
	mimekit.RegisterChecker("basetype", mimekit.RankBasetype,
		func(cfg *mimekit.Config) (mimekit.Checker, error) {
			return New(cfg.SniffSize), nil
		})
}

const (
	typeAll         = "all/all"
	typeAllFiles    = "all/allfiles"
	typeTextPlain   = "text/plain"
	typeOctetStream = "application/octet-stream"
	typeZeroSize    = "application/x-zerosize"

	typeDirectory   = "inode/directory"
	typeSymlink     = "inode/symlink"
	typeCharDevice  = "inode/chardevice"
	typeBlockDevice = "inode/blockdevice"
	typeFifo        = "inode/fifo"
	typeSocket      = "inode/socket"
)

var supported = []string{
	typeAll,
	typeAllFiles,
	typeTextPlain,
	typeOctetStream,
	typeZeroSize,
	typeDirectory,
	typeSymlink,
	typeCharDevice,
	typeBlockDevice,
	typeFifo,
	typeSocket,
}

// Checker tests the basic types. The zero value is not usable; call New.
type Checker struct {
	sniff int
}

// New creates a basic-type checker. sniff bounds how much of a file is read
// for the text/binary probes; <=0 uses 8 KiB.
func New(sniff int) *Checker {
	if sniff <= 0 {
		sniff = 8192
	}
	return &Checker{sniff: sniff}
}

func (c *Checker) SupportedTypes() []string {
	return append([]string(nil), supported...)
}

func (c *Checker) SubclassPairs() []mimekit.SubclassPair {
	return []mimekit.SubclassPair{
		{Child: typeAllFiles, Parent: typeAll},
		{Child: typeTextPlain, Parent: typeAllFiles},
		{Child: typeOctetStream, Parent: typeAllFiles},
		{Child: typeZeroSize, Parent: typeOctetStream},
	}
}

func (c *Checker) MatchBytes(typeID string, data []byte) bool {
	switch typeID {
	case typeAll, typeAllFiles:
		return true
	case typeOctetStream:
		// The binary fallback matches any byte stream; that is what makes
		// byte classification total.
		return true
	case typeZeroSize:
		return len(data) == 0
	case typeTextPlain:
		return looksTextual(truncate(data, c.sniff))
	default:
		// Inode types have no byte representation.
		return false
	}
}

func (c *Checker) MatchPath(typeID string, path string) bool {
	fi, err := os.Lstat(path)
	if err != nil {
		// Missing or unreadable degrades to no match.
		return false
	}
	mode := fi.Mode()

	switch typeID {
	case typeAll:
		return true
	case typeAllFiles:
		return mode.IsRegular()
	case typeDirectory:
		return mode.IsDir()
	case typeSymlink:
		return mode&os.ModeSymlink != 0
	case typeCharDevice:
		return mode&os.ModeCharDevice != 0
	case typeBlockDevice:
		return mode&os.ModeDevice != 0 && mode&os.ModeCharDevice == 0
	case typeFifo:
		return mode&os.ModeNamedPipe != 0
	case typeSocket:
		return mode&os.ModeSocket != 0
	case typeZeroSize:
		return mode.IsRegular() && fi.Size() == 0
	case typeOctetStream:
		return mode.IsRegular()
	case typeTextPlain:
		if !mode.IsRegular() {
			return false
		}
		head, err := c.readHeader(path)
		if err != nil {
			return false
		}
		return looksTextual(head)
	default:
		return false
	}
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

func truncate(data []byte, n int) []byte {
	if len(data) > n {
		return data[:n]
	}
	return data
}

// looksTextual reports whether data resembles NUL-free, valid-UTF-8 text.
// Empty input is not text. A single rune torn at the end of the sniffed
// header is tolerated.
func looksTextual(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return false
	}
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			// Invalid sequence: acceptable only as a truncated trailing rune.
			return len(data)-i < utf8.UTFMax
		}
		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' && r != '\f' && r != 0x0b && r != 0x1b {
			return false
		}
		i += size
	}
	return true
}
