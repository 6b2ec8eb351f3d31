package files

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// LineFilter reports whether a line must be dropped. An error aborts the transform.
type LineFilter func(line string) (bool, error)

// LineFormatter rewrites a line. Returning an empty string drops it.
type LineFormatter func(line string) string

// ContentFormatter transforms the joined result, e.g. a minifier.
type ContentFormatter func(content string) (string, error)

// Spy observes every raw line of a transformed file before any filtering.
type Spy interface {
	Read(line, fileName string)
}

type TransformOptions struct {
	Filters    []LineFilter
	Formatters []LineFormatter
	Content    ContentFormatter
	Spy        Spy
}

// TransformFile streams path line by line through opts and returns the result.
func TransformFile(path string, opts TransformOptions) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	defer f.Close()

	name := filepath.Base(path)
	rd := bufio.NewReader(f)
	var lines []string

	for {
		line, rerr := rd.ReadString('\n')
		if rerr != nil && rerr != io.EOF {
			return nil, errors.Wrapf(rerr, "read %s", path)
		}
		if rerr == io.EOF && line == "" {
			break
		}
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")

		res, err := transformLine(line, name, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", path)
		}
		if res != "" {
			lines = append(lines, res)
		}

		if rerr == io.EOF {
			break
		}
	}

	result := strings.Join(lines, "\n")
	if opts.Content != nil {
		result, err = opts.Content(result)
		if err != nil {
			return nil, errors.Wrapf(err, "format %s", path)
		}
	}
	return []byte(result), nil
}

func transformLine(line, name string, opts TransformOptions) (string, error) {
	if opts.Spy != nil {
		opts.Spy.Read(line, name)
	}
	for _, filter := range opts.Filters {
		drop, err := filter(line)
		if err != nil {
			return "", err
		}
		if drop {
			return "", nil
		}
	}
	for _, format := range opts.Formatters {
		line = format(line)
		if line == "" {
			return "", nil
		}
	}
	return line, nil
}

type recordedLine struct {
	line     string
	fileName string
}

// Recorder is a Spy that keeps lines until they are replayed to another Spy.
// It lets concurrent transforms hand their observations over in a fixed order.
type Recorder struct {
	mu    sync.Mutex
	lines []recordedLine
}

func (r *Recorder) Read(line, fileName string) {
	r.mu.Lock()
	r.lines = append(r.lines, recordedLine{line: line, fileName: fileName})
	r.mu.Unlock()
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lines)
}

// Replay sends every recorded line to spy, in recording order.
func (r *Recorder) Replay(spy Spy) {
	if spy == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lines {
		spy.Read(l.line, l.fileName)
	}
}
