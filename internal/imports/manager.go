package imports

import (
	"path"
	"strings"
	"sync"

	"github.com/toastate/toastpack/internal/buffers"
	"github.com/toastate/toastpack/internal/tlogger"
)

const scriptExt = ".js"

// Captured holds the raw import lines read from every source file, grouped by
// file base name in first-seen order.
type Captured struct {
	order []string
	lines map[string][]string
}

func NewCaptured() *Captured {
	return &Captured{lines: make(map[string][]string)}
}

func (c *Captured) Add(fileName, line string) {
	if _, ok := c.lines[fileName]; !ok {
		c.order = append(c.order, fileName)
	}
	c.lines[fileName] = append(c.lines[fileName], line)
}

func (c *Captured) Files() []string {
	return append([]string(nil), c.order...)
}

func (c *Captured) Lines(fileName string) []string {
	return c.lines[fileName]
}

// FileData is the import/export bookkeeping of one script bundle.
type FileData struct {
	Destination string
	Imports     []*ImportLine
	Exports     *ExportLine
}

func (fd *FileData) clone() *FileData {
	c := &FileData{Destination: fd.Destination, Exports: NewExportLine()}
	c.Exports.Add(fd.Exports.Names()...)
	for _, il := range fd.Imports {
		c.Imports = append(c.Imports, NewImportLine(il.Owner, il.From, il.Names))
	}
	return c
}

// Bundles indexes FileData by bundle base name, in destination order.
type Bundles struct {
	order  []string
	byName map[string]*FileData
}

func newBundles() *Bundles {
	return &Bundles{byName: make(map[string]*FileData)}
}

func (b *Bundles) Get(name string) (*FileData, bool) {
	fd, ok := b.byName[name]
	return fd, ok
}

func (b *Bundles) Names() []string {
	return append([]string(nil), b.order...)
}

func (b *Bundles) set(name string, fd *FileData) {
	if _, ok := b.byName[name]; !ok {
		b.order = append(b.order, name)
	}
	b.byName[name] = fd
}

func (b *Bundles) clone() *Bundles {
	c := newBundles()
	for _, name := range b.order {
		c.set(name, b.byName[name].clone())
	}
	return c
}

// Manager observes import lines while files are formatted, then rewrites the
// imports and exports of every script bundle.
type Manager struct {
	mu       sync.Mutex
	captured *Captured
}

func NewManager() *Manager {
	return &Manager{captured: NewCaptured()}
}

// Read implements files.Spy.
func (m *Manager) Read(line, fileName string) {
	if !strings.HasPrefix(line, importPrefix) {
		return
	}
	m.mu.Lock()
	m.captured.Add(fileName, line)
	m.mu.Unlock()
}

func (m *Manager) Captured() *Captured {
	return m.captured
}

// Process runs the four passes against bm and returns the rewritten map.
// bm itself is left untouched.
func (m *Manager) Process(bm *buffers.Map) (*buffers.Map, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bundles, err := SeedBundles(bm)
	if err != nil {
		return nil, err
	}
	bundles, err = AttributeImports(bundles, m.captured, bm)
	if err != nil {
		return nil, err
	}
	bundles = MergeImports(bundles)

	tlogger.Debug("builder", "imports", "msg", "imports resolved", "bundles", len(bundles.order), "files", len(m.captured.order))

	return Splice(bundles, bm), nil
}

// SeedBundles creates one FileData per script destination. Two destinations
// sharing a base name cannot be told apart by the next pass and are rejected.
func SeedBundles(bm *buffers.Map) (*Bundles, error) {
	bundles := newBundles()
	for _, e := range bm.Entries() {
		if path.Ext(e.BaseName) != scriptExt {
			continue
		}
		if _, ok := bundles.Get(e.BaseName); ok {
			return nil, newError(ErrDuplicateBundle, "%s", e.BaseName)
		}
		bundles.set(e.BaseName, &FileData{Destination: e.Destination, Exports: NewExportLine()})
	}
	return bundles, nil
}

// AttributeImports resolves every captured import to the bundle it now lives in.
// Names imported from a bundle are added to that bundle's exports.
func AttributeImports(in *Bundles, captured *Captured, bm *buffers.Map) (*Bundles, error) {
	bundles := in.clone()

	for _, fileName := range captured.Files() {
		owner, ok := bm.Find(fileName)
		if !ok {
			return nil, newError(ErrUnknownFile, "%s", fileName)
		}
		ownerData, _ := bundles.Get(owner.BaseName)

		for _, line := range captured.Lines(fileName) {
			names, from, err := ParseImport(line)
			if err != nil {
				return nil, err
			}
			if names == nil {
				continue
			}

			fromEntry, ok := bm.Find(baseName(from))
			if !ok {
				return nil, newError(ErrUnknownFile, "%s imported by %s", from, fileName)
			}

			il := NewImportLine(owner.Destination, fromEntry.Destination, names)
			if !il.Valid() {
				continue
			}
			// a non script owner renders no import, so nothing is exported for it
			if ownerData == nil {
				continue
			}
			ownerData.Imports = append(ownerData.Imports, il)
			if fromData, ok := bundles.Get(fromEntry.BaseName); ok {
				fromData.Exports.Add(names...)
			}
		}
	}
	return bundles, nil
}

// MergeImports collapses the imports of a bundle that target the same bundle.
func MergeImports(in *Bundles) *Bundles {
	bundles := in.clone()

	for _, name := range bundles.order {
		fd := bundles.byName[name]
		var merged []*ImportLine
		byFrom := make(map[string]*ImportLine)

		for _, il := range fd.Imports {
			if prev, ok := byFrom[il.From]; ok {
				prev.Add(il.Names...)
				continue
			}
			byFrom[il.From] = il
			merged = append(merged, il)
		}
		fd.Imports = merged
	}
	return bundles
}

// Splice renders the import header and export footer of every bundle into a copy of bm.
func Splice(bundles *Bundles, bm *buffers.Map) *buffers.Map {
	out := bm.Clone()

	for _, name := range bundles.order {
		fd := bundles.byName[name]
		e, ok := out.Get(fd.Destination)
		if !ok {
			continue
		}

		var lines []string
		for _, il := range fd.Imports {
			if s := il.String(); s != "" {
				lines = append(lines, s)
			}
		}
		if len(lines) > 0 {
			e.Header = []byte(strings.Join(lines, "\n"))
		}
		if s := fd.Exports.String(); s != "" {
			e.Footer = []byte(s)
		}
	}
	return out
}
