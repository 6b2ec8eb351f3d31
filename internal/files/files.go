package files

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

var separator = []byte{'\n'}

// ListFiles returns absolute paths of the entries under root, in lexical order.
// With fileOnly set, directories are left out of the result (they are still walked
// when recursive is set).
func ListFiles(root string, recursive, fileOnly bool) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", root)
	}

	if !recursive {
		entries, err := os.ReadDir(abs)
		if err != nil {
			return nil, errors.Wrapf(err, "list %s", root)
		}
		out := make([]string, 0, len(entries))
		for _, e := range entries {
			if fileOnly && e.IsDir() {
				continue
			}
			out = append(out, filepath.Join(abs, e.Name()))
		}
		return out, nil
	}

	var out []string
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == abs {
			return nil
		}
		if fileOnly && d.IsDir() {
			return nil
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", root)
	}
	return out, nil
}

func ReadFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return b, nil
}

// WriteFile creates the parent directories and overwrites path with data.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "create directory for %s", path)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

// ConcatBuffers joins bufs with a single newline between consecutive entries.
func ConcatBuffers(bufs [][]byte) []byte {
	if len(bufs) == 0 {
		return []byte{}
	}
	return bytes.Join(bufs, separator)
}

func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CopyDir recursively copies the content of src into dst, overwriting existing files.
func CopyDir(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		_, err = copyFile(p, target)
		return err
	})
}

func copyFile(src, dst string) (int64, error) {
	sourceFileStat, err := os.Stat(src)
	if err != nil {
		return 0, err
	}

	if !sourceFileStat.Mode().IsRegular() {
		return 0, fmt.Errorf("%s is not a regular file", src)
	}

	source, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer source.Close()

	destination, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	defer destination.Close()
	return io.Copy(destination, source)
}
