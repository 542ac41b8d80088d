// Package fdo is a checker backed by the freedesktop shared-mime-info
// databases: the compiled magic rule file for signatures and the subclasses
// file for type relations. On systems without the databases the checker is
// empty and claims no types; detection then falls through to the other
// checkers.
package fdo

import (
	"io"
	"os"

	"github.com/gobeaver/mimekit"
)

func init() {
	mimekit.RegisterChecker("fdo", mimekit.RankFdo,
		func(cfg *mimekit.Config) (mimekit.Checker, error) {
			return Load(cfg.MagicPathList(), cfg.SubclassPathList(), cfg.SniffSize), nil
		})
}

// Checker matches types against a parsed magic rule database.
type Checker struct {
	sniff int
	types []string // section order across database files
	rules map[string][]*rule
	pairs []mimekit.SubclassPair
}

// Load reads magic and subclass databases from the given paths, best effort:
// missing or malformed files are skipped. The result may be an empty
// checker, which is valid and claims no types.
func Load(magicPaths, subclassPaths []string, sniff int) *Checker {
	c := newChecker(sniff)
	for _, path := range magicPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		sections, err := parseMagic(data)
		if err != nil {
			continue
		}
		c.addSections(sections)
	}
	for _, path := range subclassPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		c.addPairs(parseSubclasses(data))
	}
	return c
}

// Parse builds a checker from raw database contents. Either argument may be
// nil. Unlike Load, a malformed magic database is reported as an error.
func Parse(magic, subclasses []byte, sniff int) (*Checker, error) {
	c := newChecker(sniff)
	if magic != nil {
		sections, err := parseMagic(magic)
		if err != nil {
			return nil, err
		}
		c.addSections(sections)
	}
	if subclasses != nil {
		c.addPairs(parseSubclasses(subclasses))
	}
	return c, nil
}

func newChecker(sniff int) *Checker {
	if sniff <= 0 {
		sniff = 8192
	}
	return &Checker{
		sniff: sniff,
		rules: make(map[string][]*rule),
	}
}

func (c *Checker) addSections(sections []section) {
	for _, sec := range sections {
		if _, ok := c.rules[sec.typeID]; !ok {
			c.types = append(c.types, sec.typeID)
		}
		c.rules[sec.typeID] = append(c.rules[sec.typeID], sec.roots...)
	}
}

func (c *Checker) addPairs(pairs [][2]string) {
	for _, p := range pairs {
		c.pairs = append(c.pairs, mimekit.SubclassPair{Child: p[0], Parent: p[1]})
	}
}

func (c *Checker) SupportedTypes() []string {
	return append([]string(nil), c.types...)
}

func (c *Checker) SubclassPairs() []mimekit.SubclassPair {
	return append([]mimekit.SubclassPair(nil), c.pairs...)
}

func (c *Checker) MatchBytes(typeID string, data []byte) bool {
	roots := c.rules[typeID]
	if len(roots) == 0 {
		return false
	}
	if len(data) > c.sniff {
		data = data[:c.sniff]
	}
	for _, r := range roots {
		if r.matchTree(data) {
			return true
		}
	}
	return false
}

func (c *Checker) MatchPath(typeID string, path string) bool {
	if len(c.rules[typeID]) == 0 {
		return false
	}
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
