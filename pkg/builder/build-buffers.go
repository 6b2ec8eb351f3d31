package builder

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/toastate/toastpack/internal/buffers"
	"github.com/toastate/toastpack/internal/files"
	"github.com/toastate/toastpack/internal/formatter"
	"github.com/toastate/toastpack/internal/tlogger"
	"github.com/toastate/toastpack/pkg/config"
	"golang.org/x/sync/errgroup"
)

// fileJob fills one slot of one destination.
type fileJob struct {
	entry  *buffers.Entry
	slot   int
	src    string
	format formatter.Func
	rec    *files.Recorder
}

func (j *fileJob) run() error {
	var (
		buf []byte
		err error
	)
	if j.format != nil {
		buf, err = j.format(j.src, j.rec)
	} else {
		buf, err = files.ReadFile(j.src)
	}
	if err != nil {
		return errors.Wrapf(err, "dest %s", j.entry.Destination)
	}
	j.entry.Fill(j.slot, buf)
	return nil
}

// planner creates every destination key in task order, from a single goroutine,
// and lists the file jobs that fill them.
type planner struct {
	b    *Builder
	bm   *buffers.Map
	jobs []*fileJob
}

func (p *planner) create(dest string) (*buffers.Entry, error) {
	target := filepath.Join(p.b.outputDir, filepath.FromSlash(dest))
	if target != p.b.outputDir && !strings.HasPrefix(target, p.b.outputDir+string(filepath.Separator)) {
		return nil, configErrorf("destination %s is outside of the output directory", dest)
	}
	e, ok := p.bm.Create(dest)
	if !ok {
		return nil, configErrorf("duplicated destination: %s", dest)
	}
	return e, nil
}

func (p *planner) add(e *buffers.Entry, src string, format formatter.Func) {
	p.jobs = append(p.jobs, &fileJob{
		entry:  e,
		slot:   e.Reserve(src),
		src:    src,
		format: format,
		rec:    &files.Recorder{},
	})
}

func (p *planner) plan(task ResolvedTask) error {
	taskFormat, err := p.b.formatterFor(task.Formatter)
	if err != nil {
		return errors.Wrapf(err, "dest %s", task.Dest)
	}

	switch {
	case len(task.Concat) > 0:
		e, err := p.create(task.Dest)
		if err != nil {
			return err
		}
		for _, entry := range task.Concat {
			format, err := p.b.formatterFor(entry.Formatter)
			if err != nil {
				return errors.Wrapf(err, "dest %s", task.Dest)
			}
			if format == nil {
				format = taskFormat
			}
			if format == nil {
				format = p.b.formatters.Default()
			}

			if filepath.Ext(entry.Src) != "" {
				p.add(e, entry.Src, format)
				continue
			}
			folder, err := files.ListFiles(entry.Src, false, true)
			if err != nil {
				return err
			}
			for _, fileName := range folder {
				p.add(e, fileName, format)
			}
		}

	case task.Src != "":
		if filepath.Ext(task.Src) != "" {
			e, err := p.create(task.Dest)
			if err != nil {
				return err
			}
			p.add(e, task.Src, taskFormat)
			return nil
		}
		tree, err := files.ListFiles(task.Src, true, true)
		if err != nil {
			return err
		}
		for _, fileName := range tree {
			rel, err := filepath.Rel(task.Src, fileName)
			if err != nil {
				return errors.Wrapf(err, "dest %s", task.Dest)
			}
			e, err := p.create(path.Join(filepath.ToSlash(task.Dest), filepath.ToSlash(rel)))
			if err != nil {
				return err
			}
			p.add(e, fileName, taskFormat)
		}

	default:
		return configErrorf("not found src for destination: %s", task.Dest)
	}
	return nil
}

// formatterFor returns nil for an unset reference, meaning verbatim copy.
func (b *Builder) formatterFor(ref config.FormatterRef) (formatter.Func, error) {
	switch {
	case !ref.IsSet():
		return nil, nil
	case ref == config.DefaultFormatterRef:
		return b.formatters.Default(), nil
	}
	f, ok := b.formatters.Lookup(string(ref))
	if !ok {
		return nil, configErrorf("unknown formatter %q, expected one of %s", string(ref), strings.Join(b.formatters.Names(), ", "))
	}
	return f, nil
}

// createBuffers plans every task, then runs the file jobs concurrently. Each job
// writes its own slot; observed lines are replayed to the spy in plan order.
func (b *Builder) createBuffers(ctx context.Context, tasks []ResolvedTask) (*buffers.Map, error) {
	p := &planner{b: b, bm: buffers.New()}
	for _, task := range tasks {
		if err := p.plan(task); err != nil {
			return nil, err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	if b.cfg.Concurrency > 0 {
		g.SetLimit(b.cfg.Concurrency)
	}
	for _, job := range p.jobs {
		job := job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return job.run()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, job := range p.jobs {
		job.rec.Replay(b.spy)
	}

	tlogger.Debug("msg", "buffers created", "destinations", p.bm.Len(), "files", len(p.jobs))
	return p.bm, nil
}
