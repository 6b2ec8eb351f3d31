package formatter

import (
	"regexp"
	"sort"
	"strings"

	"github.com/toastate/toastpack/internal/files"
	"github.com/toastate/toastpack/internal/imports"
	"github.com/toastate/toastpack/internal/tlogger"
)

const (
	JS             = "js"
	JSSkipMinify   = "js-skip-minify"
	HTML           = "html"
	CSS            = "css"
	DefaultName    = JS
	versionPattern = `\?v=\d{2}\.\d{2}\.\d{4}`
)

var versionParamRegexp = regexp.MustCompile(versionPattern)

// Func formats the file at path. Script formatters report every raw line to spy.
type Func func(path string, spy files.Spy) ([]byte, error)

type Options struct {
	Minifier Minifier
	// ScriptRewrites maps development script paths to their production names in HTML.
	ScriptRewrites map[string]string
	// Version replaces the date of every ?v=DD.MM.YYYY parameter in HTML when set.
	Version string
	// Default names the formatter used by tasks asking for the default one.
	Default string
}

// Set is the formatter registry of one build run.
type Set struct {
	opts     Options
	rewrites []string
	registry map[string]Func
}

func New(opts Options) *Set {
	if opts.Minifier == nil {
		opts.Minifier = NewTDMinifier()
	}
	if opts.Default == "" {
		opts.Default = DefaultName
	}

	s := &Set{opts: opts}
	for k := range opts.ScriptRewrites {
		s.rewrites = append(s.rewrites, k)
	}
	sort.Strings(s.rewrites)

	s.registry = map[string]Func{
		JS:           s.ProcessJS,
		JSSkipMinify: s.ProcessJSSkipMinify,
		HTML:         s.ProcessHTML,
		CSS:          s.ProcessCSS,
	}
	return s
}

// Lookup returns the formatter registered under name.
func (s *Set) Lookup(name string) (Func, bool) {
	f, ok := s.registry[name]
	return f, ok
}

func (s *Set) Default() Func {
	f, ok := s.registry[s.opts.Default]
	if !ok {
		tlogger.Warn("builder", "formatter", "msg", "unknown default formatter, using js", "name", s.opts.Default)
		return s.ProcessJS
	}
	return f
}

func (s *Set) Names() []string {
	out := make([]string, 0, len(s.registry))
	for k := range s.registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func isImportLine(line string) (bool, error) {
	return imports.IsImport(line)
}

func (s *Set) ProcessJS(path string, spy files.Spy) ([]byte, error) {
	return files.TransformFile(path, files.TransformOptions{
		Spy:        spy,
		Filters:    []files.LineFilter{isImportLine},
		Formatters: []files.LineFormatter{imports.RemoveExportLine},
		Content:    s.opts.Minifier.Script,
	})
}

// ProcessJSSkipMinify is ProcessJS without the minification pass.
func (s *Set) ProcessJSSkipMinify(path string, spy files.Spy) ([]byte, error) {
	return files.TransformFile(path, files.TransformOptions{
		Spy:        spy,
		Filters:    []files.LineFilter{isImportLine},
		Formatters: []files.LineFormatter{imports.RemoveExportLine},
	})
}

func (s *Set) ProcessHTML(path string, _ files.Spy) ([]byte, error) {
	return files.TransformFile(path, files.TransformOptions{
		Formatters: []files.LineFormatter{s.rewriteVersion, s.rewriteScripts},
		Content:    s.opts.Minifier.Markup,
	})
}

func (s *Set) ProcessCSS(path string, _ files.Spy) ([]byte, error) {
	return files.TransformFile(path, files.TransformOptions{
		Content: s.opts.Minifier.Stylesheet,
	})
}

func (s *Set) rewriteVersion(line string) string {
	if s.opts.Version == "" {
		return line
	}
	return versionParamRegexp.ReplaceAllLiteralString(line, "?v="+s.opts.Version)
}

func (s *Set) rewriteScripts(line string) string {
	for _, from := range s.rewrites {
		line = strings.Replace(line, from, s.opts.ScriptRewrites[from], 1)
	}
	return line
}
