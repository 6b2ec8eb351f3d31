// Package buffers holds the in-memory result of a build: for every destination,
// the ordered list of transformed input files that will be concatenated into it.
package buffers

import (
	"path"
	"strings"

	"github.com/toastate/toastpack/internal/files"
)

// Entry is one output destination. InputFiles and Buffers always have the same
// length and are in load order. Header and Footer are synthetic buffers added
// around the content once imports are resolved.
type Entry struct {
	Destination string
	BaseName    string
	InputFiles  []string
	Sources     []string
	Buffers     [][]byte

	Header []byte
	Footer []byte
}

// Reserve appends an empty slot for source and returns its index.
func (e *Entry) Reserve(source string) int {
	e.InputFiles = append(e.InputFiles, path.Base(strings.ReplaceAll(source, "\\", "/")))
	e.Sources = append(e.Sources, source)
	e.Buffers = append(e.Buffers, nil)
	return len(e.Buffers) - 1
}

func (e *Entry) Fill(slot int, buf []byte) {
	e.Buffers[slot] = buf
}

func (e *Entry) Add(source string, buf []byte) {
	e.Fill(e.Reserve(source), buf)
}

// Contains reports whether the entry is named fileName or concatenates a file of that name.
func (e *Entry) Contains(fileName string) bool {
	if e.BaseName == fileName {
		return true
	}
	for _, f := range e.InputFiles {
		if f == fileName {
			return true
		}
	}
	return false
}

// All returns header, content buffers and footer, skipping absent synthetic parts.
func (e *Entry) All() [][]byte {
	out := make([][]byte, 0, len(e.Buffers)+2)
	if e.Header != nil {
		out = append(out, e.Header)
	}
	out = append(out, e.Buffers...)
	if e.Footer != nil {
		out = append(out, e.Footer)
	}
	return out
}

// Bytes is the final content of the destination.
func (e *Entry) Bytes() []byte {
	return files.ConcatBuffers(e.All())
}

func (e *Entry) Clone() *Entry {
	c := *e
	c.InputFiles = append([]string(nil), e.InputFiles...)
	c.Sources = append([]string(nil), e.Sources...)
	c.Buffers = append([][]byte(nil), e.Buffers...)
	return &c
}

// Map is a destination keyed map that keeps insertion order.
type Map struct {
	keys    []string
	entries map[string]*Entry
}

func New() *Map {
	return &Map{entries: make(map[string]*Entry)}
}

// Create adds an empty entry for dest. It returns false if dest already exists.
func (m *Map) Create(dest string) (*Entry, bool) {
	if _, ok := m.entries[dest]; ok {
		return nil, false
	}
	e := &Entry{
		Destination: dest,
		BaseName:    path.Base(strings.ReplaceAll(dest, "\\", "/")),
	}
	m.keys = append(m.keys, dest)
	m.entries[dest] = e
	return e, true
}

func (m *Map) Get(dest string) (*Entry, bool) {
	e, ok := m.entries[dest]
	return e, ok
}

func (m *Map) Keys() []string {
	return append([]string(nil), m.keys...)
}

func (m *Map) Entries() []*Entry {
	out := make([]*Entry, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.entries[k])
	}
	return out
}

func (m *Map) Len() int {
	return len(m.keys)
}

// Find returns the first destination, in insertion order, that contains fileName.
func (m *Map) Find(fileName string) (*Entry, bool) {
	for _, k := range m.keys {
		if e := m.entries[k]; e.Contains(fileName) {
			return e, true
		}
	}
	return nil, false
}

// Clone copies the map and its entries; buffer contents are shared.
func (m *Map) Clone() *Map {
	c := New()
	for _, k := range m.keys {
		c.keys = append(c.keys, k)
		c.entries[k] = m.entries[k].Clone()
	}
	return c
}
