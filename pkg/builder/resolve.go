package builder

import (
	"path/filepath"
	"strings"

	"github.com/toastate/toastpack/internal/files"
	"github.com/toastate/toastpack/pkg/config"
)

// ResolvedTask is a task whose sources are absolute paths known to exist.
type ResolvedTask struct {
	Dest      string
	Src       string
	Formatter config.FormatterRef
	Concat    []ResolvedEntry
}

type ResolvedEntry struct {
	Src       string
	Formatter config.FormatterRef
}

// resolveTasks turns project relative sources into absolute paths. A src ending
// in "..." is joined with the destination, a missing src defaults to the
// destination itself. Missing sources are reported all at once.
func resolveTasks(rootDir string, tasks []config.Task) ([]ResolvedTask, error) {
	out := make([]ResolvedTask, 0, len(tasks))
	missing := &ResolutionError{}

	for i, task := range tasks {
		if task.Dest == "" {
			return nil, configErrorf("task %d: dest is required", i)
		}

		rt := ResolvedTask{Dest: task.Dest, Formatter: task.Formatter}

		if len(task.Concat) > 0 {
			for _, entry := range task.Concat {
				file := filepath.Join(rootDir, entry.Src)
				if !files.Exists(file) {
					missing.add(entry.Src)
					continue
				}
				rt.Concat = append(rt.Concat, ResolvedEntry{Src: file, Formatter: entry.Formatter})
			}
			out = append(out, rt)
			continue
		}

		var file string
		switch {
		case strings.HasSuffix(task.Src, config.MirrorSuffix):
			file = filepath.Join(rootDir, strings.TrimSuffix(task.Src, config.MirrorSuffix), task.Dest)
		case task.Src != "":
			file = filepath.Join(rootDir, task.Src)
		default:
			file = filepath.Join(rootDir, task.Dest)
		}

		if !files.Exists(file) {
			if task.Src != "" {
				missing.add(task.Src)
			} else {
				missing.add(task.Dest)
			}
			continue
		}
		rt.Src = file
		out = append(out, rt)
	}

	if err := missing.orNil(); err != nil {
		return nil, err
	}
	return out, nil
}
