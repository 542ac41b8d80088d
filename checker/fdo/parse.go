package fdo

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// The compiled shared-mime-info magic database starts with this header,
// followed by [priority:type] sections whose rule lines may embed any byte,
// including newlines, inside their values. The file therefore has to be
// consumed sequentially; it cannot be split on line breaks.
var magicHeader = []byte("MIME-Magic\x00\n")

// rule is one match line of a magic section. A rule matches when its
// (masked) value occurs at some offset in [start, start+rangeLen), and a
// rule with children additionally needs one child subtree to match.
type rule struct {
	indent   int
	start    int
	value    []byte
	mask     []byte // nil means exact comparison
	wordSize int
	rangeLen int
	children []*rule
}

// section is one [priority:type] block: the rule forest for a single type.
type section struct {
	priority int
	typeID   string
	roots    []*rule
}

var hostLittleEndian = binary.NativeEndian.Uint16([]byte{0x12, 0x34}) == 0x3412

// parseMagic parses a compiled shared-mime-info magic database.
func parseMagic(data []byte) ([]section, error) {
	if !bytes.HasPrefix(data, magicHeader) {
		return nil, fmt.Errorf("missing MIME-Magic header")
	}
	p := &parser{data: data, pos: len(magicHeader)}

	var sections []section
	for !p.eof() {
		sec, err := p.section()
		if err != nil {
			return nil, fmt.Errorf("offset %d: %w", p.pos, err)
		}
		sections = append(sections, sec)
	}
	return sections, nil
}

type parser struct {
	data []byte
	pos  int
}

func (p *parser) eof() bool { return p.pos >= len(p.data) }

func (p *parser) peek() byte { return p.data[p.pos] }

func (p *parser) expect(b byte) error {
	if p.eof() || p.data[p.pos] != b {
		return fmt.Errorf("expected %q", b)
	}
	p.pos++
	return nil
}

// uint reads a decimal integer. Returns ok=false when no digits are present.
func (p *parser) uint() (int, bool) {
	start := p.pos
	n := 0
	for !p.eof() && p.data[p.pos] >= '0' && p.data[p.pos] <= '9' {
		n = n*10 + int(p.data[p.pos]-'0')
		p.pos++
	}
	return n, p.pos > start
}

func (p *parser) take(n int) ([]byte, error) {
	if p.pos+n > len(p.data) {
		return nil, fmt.Errorf("truncated database")
	}
	b := p.data[p.pos : p.pos+n]
	p.pos += n
	return b, nil
}

// section parses "[priority:type]\n" and the rule lines that follow it.
func (p *parser) section() (section, error) {
	var sec section

	if err := p.expect('['); err != nil {
		return sec, err
	}
	prio, ok := p.uint()
	if !ok {
		return sec, fmt.Errorf("missing section priority")
	}
	sec.priority = prio
	if err := p.expect(':'); err != nil {
		return sec, err
	}
	end := bytes.IndexByte(p.data[p.pos:], ']')
	if end < 0 {
		return sec, fmt.Errorf("unterminated section header")
	}
	sec.typeID = string(p.data[p.pos : p.pos+end])
	p.pos += end + 1
	if err := p.expect('\n'); err != nil {
		return sec, err
	}

	// Rules form a forest by indent level.
	var stack []*rule
	for !p.eof() && p.peek() != '[' {
		r, err := p.rule()
		if err != nil {
			return sec, err
		}
		for len(stack) > 0 && stack[len(stack)-1].indent >= r.indent {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			sec.roots = append(sec.roots, r)
		} else {
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, r)
		}
		stack = append(stack, r)
	}
	return sec, nil
}

// rule parses one line:
//
//	[indent] '>' start '=' <2-byte BE length> <value>
//	['&' <mask>] ['~' word-size] ['+' range-length] '\n'
func (p *parser) rule() (*rule, error) {
	r := &rule{wordSize: 1, rangeLen: 1}

	r.indent, _ = p.uint() // absent indent means 0
	if err := p.expect('>'); err != nil {
		return nil, err
	}
	start, ok := p.uint()
	if !ok {
		return nil, fmt.Errorf("missing start offset")
	}
	r.start = start
	if err := p.expect('='); err != nil {
		return nil, err
	}
	lenBytes, err := p.take(2)
	if err != nil {
		return nil, err
	}
	valueLen := int(binary.BigEndian.Uint16(lenBytes))
	value, err := p.take(valueLen)
	if err != nil {
		return nil, err
	}
	r.value = append([]byte(nil), value...)

	if !p.eof() && p.peek() == '&' {
		p.pos++
		mask, err := p.take(valueLen)
		if err != nil {
			return nil, err
		}
		r.mask = append([]byte(nil), mask...)
	}
	if !p.eof() && p.peek() == '~' {
		p.pos++
		ws, ok := p.uint()
		if !ok {
			return nil, fmt.Errorf("missing word size")
		}
		r.wordSize = ws
	}
	if !p.eof() && p.peek() == '+' {
		p.pos++
		rl, ok := p.uint()
		if !ok {
			return nil, fmt.Errorf("missing range length")
		}
		r.rangeLen = rl
	}
	if err := p.expect('\n'); err != nil {
		return nil, err
	}

	// Multi-byte words are stored big-endian; host-endian matches need the
	// value and mask swapped on little-endian machines.
	if (r.wordSize == 2 || r.wordSize == 4) && hostLittleEndian {
		swapWords(r.value, r.wordSize)
		swapWords(r.mask, r.wordSize)
	}
	if r.rangeLen < 1 {
		r.rangeLen = 1
	}
	return r, nil
}

func swapWords(b []byte, word int) {
	if len(b)%word != 0 {
		return
	}
	for i := 0; i < len(b); i += word {
		for l, r := i, i+word-1; l < r; l, r = l+1, r-1 {
			b[l], b[r] = b[r], b[l]
		}
	}
}

func (r *rule) matchAt(data []byte, off int) bool {
	if off < 0 || off+len(r.value) > len(data) {
		return false
	}
	if r.mask == nil {
		return bytes.Equal(data[off:off+len(r.value)], r.value)
	}
	for i := range r.value {
		if data[off+i]&r.mask[i] != r.value[i]&r.mask[i] {
			return false
		}
	}
	return true
}

func (r *rule) match(data []byte) bool {
	for off := r.start; off < r.start+r.rangeLen; off++ {
		if r.matchAt(data, off) {
			return true
		}
	}
	return false
}

// matchTree reports whether the rule and, when present, one of its child
// subtrees match.
func (r *rule) matchTree(data []byte) bool {
	if !r.match(data) {
		return false
	}
	if len(r.children) == 0 {
		return true
	}
	for _, child := range r.children {
		if child.matchTree(data) {
			return true
		}
	}
	return false
}

// parseSubclasses parses the shared-mime-info subclasses file: one
// "child parent" pair per line.
func parseSubclasses(data []byte) [][2]string {
	var pairs [][2]string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		pairs = append(pairs, [2]string{fields[0], fields[1]})
	}
	return pairs
}
