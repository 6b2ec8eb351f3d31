package files

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestConcatBuffers(t *testing.T) {
	tests := []struct {
		name string
		in   [][]byte
		want string
	}{
		{"empty", nil, ""},
		{"single", [][]byte{[]byte("a")}, "a"},
		{"ordered", [][]byte{[]byte("a"), []byte("b"), []byte("c")}, "a\nb\nc"},
		{"empty entry keeps separator", [][]byte{[]byte("a"), {}, []byte("c")}, "a\n\nc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(ConcatBuffers(tt.in)))
		})
	}
}

func TestListFiles(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "b.js", "b")
	writeFixture(t, root, "a.js", "a")
	writeFixture(t, root, "sub/c.js", "c")

	flat, err := ListFiles(root, false, true)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.js"), filepath.Join(root, "b.js")}, flat)

	all, err := ListFiles(root, false, false)
	require.NoError(t, err)
	assert.Contains(t, all, filepath.Join(root, "sub"))

	deep, err := ListFiles(root, true, true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.js"),
		filepath.Join(root, "b.js"),
		filepath.Join(root, "sub", "c.js"),
	}, deep)

	_, err = ListFiles(filepath.Join(root, "missing"), false, true)
	assert.Error(t, err)
}

func TestWriteFileCreatesParents(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "x", "y", "z.txt")
	require.NoError(t, WriteFile(p, []byte("first")))
	require.NoError(t, WriteFile(p, []byte("2")))

	b, err := ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "2", string(b))
}

type collectSpy struct {
	lines []string
}

func (s *collectSpy) Read(line, fileName string) {
	s.lines = append(s.lines, fileName+":"+line)
}

func TestTransformFile(t *testing.T) {
	root := t.TempDir()
	p := writeFixture(t, root, "x.js", "import {a} from './a.js';\r\nconst b = 1;\n\nexport const c = 2;\nlast")

	spy := &collectSpy{}
	var seen []string
	out, err := TransformFile(p, TransformOptions{
		Spy: spy,
		Filters: []LineFilter{func(line string) (bool, error) {
			return strings.HasPrefix(line, "import "), nil
		}},
		Formatters: []LineFormatter{
			func(line string) string {
				seen = append(seen, line)
				return strings.TrimPrefix(line, "export ")
			},
			func(line string) string {
				if line == "last" {
					return ""
				}
				return line
			},
		},
		Content: func(s string) (string, error) { return "<" + s + ">", nil },
	})
	require.NoError(t, err)
	assert.Equal(t, "<const b = 1;\nconst c = 2;>", string(out))
	assert.Len(t, spy.lines, 5)
	assert.Equal(t, "x.js:import {a} from './a.js';", spy.lines[0])
	assert.NotContains(t, seen, "import {a} from './a.js';")
}

func TestTransformFileFilterError(t *testing.T) {
	root := t.TempDir()
	p := writeFixture(t, root, "x.js", "import * as a from './a.js';\n")

	boom := errors.New("boom")
	_, err := TransformFile(p, TransformOptions{
		Filters: []LineFilter{func(string) (bool, error) { return false, boom }},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestRecorderReplay(t *testing.T) {
	r := &Recorder{}
	r.Read("one", "a.js")
	r.Read("two", "b.js")
	assert.Equal(t, 2, r.Len())

	spy := &collectSpy{}
	r.Replay(spy)
	assert.Equal(t, []string{"a.js:one", "b.js:two"}, spy.lines)
	r.Replay(nil)
}

func TestCopyDir(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFixture(t, src, "a.txt", "a")
	writeFixture(t, src, "sub/b.txt", "b")
	writeFixture(t, dst, "a.txt", "old")

	require.NoError(t, CopyDir(src, dst))

	b, err := os.ReadFile(filepath.Join(dst, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "a", string(b))
	assert.True(t, Exists(filepath.Join(dst, "sub", "b.txt")))
}

func TestWriteBrotli(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "app.js")
	data := []byte(strings.Repeat("const a = 1;\n", 50))
	require.NoError(t, WriteBrotli(p, data))

	compressed, err := os.ReadFile(p + ".br")
	require.NoError(t, err)
	plain, err := io.ReadAll(brotli.NewReader(bytes.NewReader(compressed)))
	require.NoError(t, err)
	assert.Equal(t, data, plain)

	assert.True(t, Compressible("x/app.js"))
	assert.False(t, Compressible("favicon.ico"))
}
