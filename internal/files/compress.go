package files

import (
	"bytes"
	"path/filepath"

	"github.com/andybalholm/brotli"
	"github.com/pkg/errors"
)

var compressibleExt = map[string]bool{
	".js":   true,
	".css":  true,
	".html": true,
	".json": true,
	".svg":  true,
	".txt":  true,
}

func Compressible(path string) bool {
	return compressibleExt[filepath.Ext(path)]
}

// WriteBrotli writes a brotli compressed copy of data next to path, as path + ".br".
func WriteBrotli(path string, data []byte) error {
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, brotli.BestCompression)
	if _, err := w.Write(data); err != nil {
		return errors.Wrapf(err, "compress %s", path)
	}
	if err := w.Close(); err != nil {
		return errors.Wrapf(err, "compress %s", path)
	}
	return WriteFile(path+".br", buf.Bytes())
}
