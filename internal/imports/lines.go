package imports

import (
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

const (
	importPrefix        = "import "
	exportPrefix        = "export "
	exportDefaultPrefix = "export default"

	// filepath.Rel treats the owning bundle as a directory, which adds one
	// extra "../"; dropping the first character turns it into "./".
	relativePathCorrection = 1
)

var (
	wildcardImportRegexp = regexp.MustCompile(`^import\s+\*`)
	importLineRegexp     = regexp.MustCompile(`^import\s*(?:([\w$]+)\s*,\s*)?\{([^}]*)\}\s*from\s*['"]([^'"]+)['"]\s*;\s*(?://.*)?$`)
	identifierRegexp     = regexp.MustCompile(`^[\w$]+$`)

	// Declarations that keep their body once the export keyword is stripped.
	keptExportKinds = []string{"const", "let", "var", "class", "function", "async"}
)

// IsImport reports whether line is a static import statement. Wildcard imports
// are rejected since their names cannot be aggregated into a bundle export.
func IsImport(line string) (bool, error) {
	if !strings.HasPrefix(line, importPrefix) {
		return false, nil
	}
	if wildcardImportRegexp.MatchString(line) {
		return false, newError(ErrUnsupportedImport, "%s", line)
	}
	return true, nil
}

// ParseImport extracts the imported names and the module path of an import line.
// A line that is not an import, or that imports nothing, yields no names.
func ParseImport(line string) ([]string, string, error) {
	ok, err := IsImport(line)
	if err != nil || !ok {
		return nil, "", err
	}

	match := importLineRegexp.FindStringSubmatch(line)
	if match == nil {
		return nil, "", newError(ErrUnparsableImport, "%s", line)
	}

	var names []string
	for _, name := range strings.Split(match[2], ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !identifierRegexp.MatchString(name) {
			return nil, "", newError(ErrUnparsableImport, "%s", line)
		}
		names = append(names, name)
	}

	from := strings.TrimSpace(match[3])
	if len(names) == 0 || from == "" {
		return nil, "", nil
	}
	return names, from, nil
}

func isExport(line string) bool {
	return strings.HasPrefix(line, exportPrefix) && !strings.HasPrefix(line, exportDefaultPrefix)
}

// RemoveExportLine strips the export keyword from exported declarations and blanks
// every other export statement. Default exports are left untouched.
func RemoveExportLine(line string) string {
	if !isExport(line) {
		return line
	}
	for _, kind := range keptExportKinds {
		if strings.HasPrefix(line, exportPrefix+kind) {
			return line[len(exportPrefix):]
		}
	}
	return ""
}

// ImportLine is one import statement of a bundle, pointing at another bundle.
type ImportLine struct {
	Owner string
	From  string
	Names []string
}

func NewImportLine(owner, from string, names []string) *ImportLine {
	il := &ImportLine{Owner: owner, From: from}
	il.Add(names...)
	return il
}

// Valid is false for imports a bundle would make from itself.
func (il *ImportLine) Valid() bool {
	return il.From != "" && baseName(il.From) != baseName(il.Owner)
}

// Add appends names not yet imported, keeping first-seen order.
func (il *ImportLine) Add(names ...string) {
	for _, name := range names {
		if name == "" || il.has(name) {
			continue
		}
		il.Names = append(il.Names, name)
	}
}

func (il *ImportLine) has(name string) bool {
	for _, n := range il.Names {
		if n == name {
			return true
		}
	}
	return false
}

func (il *ImportLine) String() string {
	if il.From == "" || len(il.Names) == 0 {
		return ""
	}
	return "import {" + strings.Join(il.Names, ", ") + "} from '" + RelativePath(il.Owner, il.From) + "';"
}

// ExportLine is the aggregated export statement of a bundle.
type ExportLine struct {
	names map[string]struct{}
}

func NewExportLine() *ExportLine {
	return &ExportLine{names: make(map[string]struct{})}
}

func (el *ExportLine) Add(names ...string) {
	for _, name := range names {
		if name != "" {
			el.names[name] = struct{}{}
		}
	}
}

// Names returns the exported names sorted lexicographically.
func (el *ExportLine) Names() []string {
	out := make([]string, 0, len(el.names))
	for name := range el.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (el *ExportLine) String() string {
	if len(el.names) == 0 {
		return ""
	}
	return "export {" + strings.Join(el.Names(), ", ") + "};"
}

// RelativePath returns the import path of bundle `to` as seen from bundle `from`.
func RelativePath(from, to string) string {
	rel, err := filepath.Rel(filepath.FromSlash(formatPath(from)), filepath.FromSlash(formatPath(to)))
	if err != nil {
		return to
	}
	return formatPath(filepath.ToSlash(rel))[relativePathCorrection:]
}

func formatPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	if p == "" || (p[0] != '/' && p[0] != '.') {
		p = "/" + p
	}
	return p
}

func baseName(p string) string {
	return path.Base(strings.ReplaceAll(p, "\\", "/"))
}
