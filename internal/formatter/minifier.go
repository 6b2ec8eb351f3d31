package formatter

import (
	"regexp"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/pkg/errors"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

const (
	EngineTdewolff = "tdewolff"
	EngineEsbuild  = "esbuild"

	mediaJS   = "text/javascript"
	mediaHTML = "text/html"
	mediaCSS  = "text/css"
)

// Minifier turns script, markup and stylesheet text into their minified form.
type Minifier interface {
	Script(string) (string, error)
	Markup(string) (string, error)
	Stylesheet(string) (string, error)
}

// TDMinifier minifies everything with tdewolff/minify.
type TDMinifier struct {
	m *minify.M
}

func NewTDMinifier() *TDMinifier {
	m := minify.New()
	m.AddFunc(mediaCSS, css.Minify)
	m.Add(mediaHTML, &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
	})
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)
	return &TDMinifier{m: m}
}

// Script keeps the final statement terminated: minified files are concatenated
// with a newline only, which does not separate `a=1` from a following `(...)`.
func (t *TDMinifier) Script(s string) (string, error) {
	out, err := t.m.String(mediaJS, s)
	if err != nil {
		return "", err
	}
	if out != "" && !strings.HasSuffix(out, ";") {
		out += ";"
	}
	return out, nil
}

func (t *TDMinifier) Markup(s string) (string, error) {
	return t.m.String(mediaHTML, s)
}

func (t *TDMinifier) Stylesheet(s string) (string, error) {
	return t.m.String(mediaCSS, s)
}

// EsbuildMinifier uses esbuild for scripts and falls back to tdewolff for the rest.
// Identifiers are not renamed: top-level names are shared between concatenated files.
type EsbuildMinifier struct {
	*TDMinifier
}

func (e *EsbuildMinifier) Script(s string) (string, error) {
	result := api.Transform(s, api.TransformOptions{
		Loader:           api.LoaderJS,
		MinifyWhitespace: true,
		MinifySyntax:     true,
		Charset:          api.CharsetUTF8,
	})
	if len(result.Errors) > 0 {
		msgs := make([]string, 0, len(result.Errors))
		for _, m := range result.Errors {
			msgs = append(msgs, m.Text)
		}
		return "", errors.Errorf("esbuild: %s", strings.Join(msgs, "; "))
	}
	return strings.TrimRight(string(result.Code), "\n"), nil
}

// NewMinifier returns the minifier for engine; an empty engine means tdewolff.
func NewMinifier(engine string) (Minifier, error) {
	switch engine {
	case "", EngineTdewolff:
		return NewTDMinifier(), nil
	case EngineEsbuild:
		return &EsbuildMinifier{TDMinifier: NewTDMinifier()}, nil
	default:
		return nil, errors.Errorf("unknown minifier engine %q", engine)
	}
}
