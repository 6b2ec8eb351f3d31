package imports

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsImport(t *testing.T) {
	ok, err := IsImport("import {a} from './a.js';")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsImport("const imported = 1;")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = IsImport("await import('./lazy.js');")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = IsImport("import * as utils from './utils.js';")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedImport))
	assert.Contains(t, err.Error(), "./utils.js")
}

func TestParseImport(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantNames []string
		wantFrom  string
		wantErr   error
	}{
		{"named", "import {a, b} from './a.js';", []string{"a", "b"}, "./a.js", nil},
		{"double quotes", `import { Data } from "../data.js";`, []string{"Data"}, "../data.js", nil},
		{"default and named", "import USER, {APP_VERSION} from './constants.js';", []string{"APP_VERSION"}, "./constants.js", nil},
		{"trailing comment", "import {ZERO} from './lib.js'; // note", []string{"ZERO"}, "./lib.js", nil},
		{"trailing comma", "import {a, b,} from './a.js';", []string{"a", "b"}, "./a.js", nil},
		{"empty braces", "import {} from './a.js';", nil, "", nil},
		{"not an import", "const a = 1;", nil, "", nil},
		{"default only", "import a from './a.js';", nil, "", ErrUnparsableImport},
		{"side effect", "import './a.js';", nil, "", ErrUnparsableImport},
		{"missing semicolon", "import {a} from './a.js'", nil, "", ErrUnparsableImport},
		{"alias", "import {a as b} from './a.js';", nil, "", ErrUnparsableImport},
		{"wildcard", "import * as a from './a.js';", nil, "", ErrUnsupportedImport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names, from, err := ParseImport(tt.line)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, tt.wantFrom, from)
		})
	}
}

func TestRemoveExportLine(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"export const a = 1;", "const a = 1;"},
		{"export let a;", "let a;"},
		{"export var a;", "var a;"},
		{"export class A {", "class A {"},
		{"export function f() {", "function f() {"},
		{"export async function f() {", "async function f() {"},
		{"export {};", ""},
		{"export {a, b};", ""},
		{"export default USER;", "export default USER;"},
		{"const exported = 1;", "const exported = 1;"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, RemoveExportLine(tt.line))
		})
	}
}

func TestRelativePath(t *testing.T) {
	tests := []struct {
		from, to, want string
	}{
		{"/bundle1.js", "/bundle2.js", "./bundle2.js"},
		{"main.js", "/modules/app.js", "./modules/app.js"},
		{"/modules/app.js", "/modules/services/quizzes.js", "./services/quizzes.js"},
		{"/modules/services/flashcards.js", "/modules/app.js", "./../app.js"},
		{`\modules\app.js`, `\modules\web.js`, "./web.js"},
		{"//modules//app.js", "/modules/web.js", "./web.js"},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativePath(tt.from, tt.to))
		})
	}
}

func TestImportLine(t *testing.T) {
	il := NewImportLine("/modules/app.js", "/modules/services/maps.js", []string{"b", "a", "b"})
	il.Add("c", "a", "")
	assert.Equal(t, []string{"b", "a", "c"}, il.Names)
	assert.True(t, il.Valid())
	assert.Equal(t, "import {b, a, c} from './services/maps.js';", il.String())

	self := NewImportLine("/modules/app.js", "/other/app.js", []string{"a"})
	assert.False(t, self.Valid())

	empty := NewImportLine("/modules/app.js", "/x.js", nil)
	assert.Equal(t, "", empty.String())
	assert.Equal(t, "", NewImportLine("/a.js", "", []string{"a"}).String())
}

func TestExportLine(t *testing.T) {
	el := NewExportLine()
	assert.Equal(t, "", el.String())

	el.Add("Router", "APP_VERSION", "Router", "", "add")
	assert.Equal(t, []string{"APP_VERSION", "Router", "add"}, el.Names())
	assert.Equal(t, "export {APP_VERSION, Router, add};", el.String())
}
