package mimekit

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

var pngSig = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// baseStub emulates the basic-type checker with in-test logic so the core
// can be exercised without importing the real checker packages (which would
// create an import cycle from this package).
func baseStub() *stubChecker {
	bytesFn := func(typeID string, data []byte) bool {
		switch typeID {
		case TypeAll, TypeAllFiles, TypeOctetStream:
			return true
		case "application/x-zerosize":
			return len(data) == 0
		case TypeTextPlain:
			if len(data) == 0 {
				return false
			}
			for _, b := range data {
				if b != '\n' && b != '\r' && b != '\t' && (b < 0x20 || b > 0x7E) {
					return false
				}
			}
			return true
		default:
			return false
		}
	}
	s := &stubChecker{
		types: []string{
			TypeAll, TypeAllFiles, TypeTextPlain, TypeOctetStream,
			"application/x-zerosize",
		},
		pairs: []SubclassPair{
			{Child: TypeAllFiles, Parent: TypeAll},
			{Child: TypeTextPlain, Parent: TypeAllFiles},
			{Child: TypeOctetStream, Parent: TypeAllFiles},
			{Child: "application/x-zerosize", Parent: TypeOctetStream},
		},
		bytesFn: bytesFn,
	}
	s.pathFn = func(typeID string, path string) bool {
		data, err := os.ReadFile(path)
		if err != nil {
			return false
		}
		return bytesFn(typeID, data)
	}
	return s
}

func pngStub() *stubChecker {
	bytesFn := func(typeID string, data []byte) bool {
		return typeID == "image/png" && bytes.HasPrefix(data, pngSig)
	}
	s := &stubChecker{
		types:   []string{"image/png"},
		bytesFn: bytesFn,
	}
	s.pathFn = func(typeID string, path string) bool {
		data, err := os.ReadFile(path)
		if err != nil {
			return false
		}
		return bytesFn(typeID, data)
	}
	return s
}

func newTestDetector(opts ...Option) *Detector {
	opts = append([]Option{
		WithConfig(DefaultConfig()),
		WithCheckers(baseStub(), pngStub()),
	}, opts...)
	return New(opts...)
}

func TestDetectBytesPNG(t *testing.T) {
	d := newTestDetector()
	got, err := d.DetectBytes(append(pngSig, 0x00, 0x00))
	if err != nil {
		t.Fatalf("DetectBytes: %v", err)
	}
	if got != "image/png" {
		t.Errorf("DetectBytes = %q, want image/png", got)
	}
}

func TestDetectBytesEmptyInput(t *testing.T) {
	d := newTestDetector()
	got, err := d.DetectBytes(nil)
	if err != nil {
		t.Fatalf("DetectBytes: %v", err)
	}
	if got != "application/x-zerosize" {
		t.Errorf("DetectBytes(empty) = %q, want application/x-zerosize", got)
	}
}

func TestDetectBytesTotality(t *testing.T) {
	d := newTestDetector()
	inputs := [][]byte{
		nil,
		{},
		[]byte("plain text\n"),
		{0x00, 0x01, 0x02},
		bytes.Repeat([]byte{0xFF}, 4096),
		append(pngSig, []byte("payload")...),
	}
	for _, in := range inputs {
		if _, err := d.DetectBytes(in); err != nil {
			t.Errorf("DetectBytes(%d bytes): %v", len(in), err)
		}
	}
}

func TestDetectBytesIdempotent(t *testing.T) {
	d := newTestDetector()
	data := []byte("the same bytes every time")
	first, err := d.DetectBytes(data)
	if err != nil {
		t.Fatalf("DetectBytes: %v", err)
	}
	for i := 0; i < 5; i++ {
		got, err := d.DetectBytes(data)
		if err != nil || got != first {
			t.Fatalf("call %d: got %q, %v; want %q, nil", i, got, err, first)
		}
	}
}

func TestDetectBytesBrokenHierarchy(t *testing.T) {
	// A checker set that claims types but never matches anything violates
	// the totality guarantee.
	d := New(
		WithConfig(DefaultConfig()),
		WithCheckers(&stubChecker{types: []string{"image/png"}}),
	)
	_, err := d.DetectBytes([]byte("data"))
	if !errors.Is(err, ErrBrokenHierarchy) {
		t.Errorf("err = %v, want ErrBrokenHierarchy", err)
	}
}

func TestDetectPath(t *testing.T) {
	d := newTestDetector()
	dir := t.TempDir()

	png := filepath.Join(dir, "shot.dat")
	if err := os.WriteFile(png, append(pngSig, 1, 2, 3), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := d.DetectPath(png)
	if err != nil {
		t.Fatalf("DetectPath: %v", err)
	}
	if got != "image/png" {
		t.Errorf("DetectPath = %q, want image/png", got)
	}
}

func TestDetectPathMissingFile(t *testing.T) {
	d := newTestDetector()
	_, err := d.DetectPath(filepath.Join(t.TempDir(), "does-not-exist"))
	if !errors.Is(err, ErrNoMatch) {
		t.Errorf("err = %v, want ErrNoMatch", err)
	}
}

func TestDetectBytesFrom(t *testing.T) {
	d := newTestDetector()
	h, err := d.Hierarchy()
	if err != nil {
		t.Fatal(err)
	}
	node, ok := h.Lookup(TypeOctetStream)
	if !ok {
		t.Fatal("octet-stream missing from hierarchy")
	}

	got, err := d.DetectBytesFrom(node, append(pngSig, 9, 9))
	if err != nil {
		t.Fatalf("DetectBytesFrom: %v", err)
	}
	if got != "image/png" {
		t.Errorf("DetectBytesFrom = %q, want image/png", got)
	}
}

func TestDetectBytesFromNoMatchIsOrdinary(t *testing.T) {
	d := newTestDetector()
	h, _ := d.Hierarchy()
	node, _ := h.Lookup("image/png") // leaf: no children to match

	_, err := d.DetectBytesFrom(node, []byte("not a png"))
	if !errors.Is(err, ErrNoMatch) {
		t.Errorf("err = %v, want ErrNoMatch", err)
	}
}

func TestDetectFromForeignNode(t *testing.T) {
	d1 := newTestDetector()
	d2 := newTestDetector()

	h1, err := d1.Hierarchy()
	if err != nil {
		t.Fatal(err)
	}
	foreign, _ := h1.Lookup(TypeOctetStream)

	if _, err := d2.DetectBytesFrom(foreign, nil); !errors.Is(err, ErrForeignNode) {
		t.Errorf("DetectBytesFrom foreign node: err = %v, want ErrForeignNode", err)
	}
	if _, err := d2.DetectPathFrom(foreign, "/tmp/x"); !errors.Is(err, ErrForeignNode) {
		t.Errorf("DetectPathFrom foreign node: err = %v, want ErrForeignNode", err)
	}
	if _, err := d2.DetectBytesFrom(nil, nil); !errors.Is(err, ErrForeignNode) {
		t.Errorf("DetectBytesFrom nil node: err = %v, want ErrForeignNode", err)
	}
}

func TestDetectorNoCheckers(t *testing.T) {
	d := New(WithConfig(DefaultConfig()), WithCheckers())
	if _, err := d.DetectBytes([]byte("x")); !errors.Is(err, ErrNoCheckers) {
		t.Errorf("err = %v, want ErrNoCheckers", err)
	}
}

func TestMatchBytesDirect(t *testing.T) {
	d := newTestDetector()

	if !d.MatchBytes("image/png", pngSig) {
		t.Error("MatchBytes(image/png, sig) = false")
	}
	if d.MatchBytes("image/png", []byte("nope")) {
		t.Error("MatchBytes(image/png, text) = true")
	}
	if d.MatchBytes("application/x-unknown", pngSig) {
		t.Error("MatchBytes matched an unknown type")
	}
}

func TestDetectBytesCached(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheEnabled = true
	d := New(WithConfig(cfg), WithCheckers(baseStub(), pngStub()))

	data := append(pngSig, []byte("frame")...)
	for i := 0; i < 3; i++ {
		got, err := d.DetectBytes(data)
		if err != nil || got != "image/png" {
			t.Fatalf("call %d: got %q, %v", i, got, err)
		}
	}

	stats := d.CacheStats()
	if stats.Misses != 1 || stats.Hits != 2 {
		t.Errorf("cache stats = %+v, want 1 miss and 2 hits", stats)
	}
}

func BenchmarkDetectBytes(b *testing.B) {
	d := newTestDetector()
	data := append(pngSig, bytes.Repeat([]byte{0xAB}, 1024)...)
	if _, err := d.DetectBytes(data); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = d.DetectBytes(data)
	}
}
