package builder

import (
	"context"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/toastate/toastpack/internal/tlogger"
)

// Init resolves the task sources and removes the previous output directory.
// Missing sources are reported together in a single *ResolutionError.
func (b *Builder) Init() error {
	if err := b.expect("init", Created); err != nil {
		return err
	}

	root, err := filepath.Abs(b.cfg.RootDir)
	if err != nil {
		return errors.Wrapf(err, "root directory %s", b.cfg.RootDir)
	}
	b.rootDir = root
	b.outputDir = filepath.Join(root, b.cfg.OutputDir)

	tasks, err := resolveTasks(root, b.cfg.Tasks)
	if err != nil {
		tlogger.Error("msg", "Unable to resolve tasks", "root", root, "err", err)
		return err
	}
	b.tasks = tasks
	tlogger.Debug("msg", "tasks resolved", "tasks", spew.Sdump(tasks))

	b.cleared = clearOutput(root, b.cfg.OutputDir, b.cfg.Clean.AllowedNames, b.cfg.Clean.MinDepth)
	if !b.cleared.Done {
		logSkipped("output clear", b.cleared)
	}

	b.state = Initialized
	return nil
}

// BuildBuffers transforms every input file and groups the results by destination.
func (b *Builder) BuildBuffers(ctx context.Context) error {
	if err := b.expect("build buffers", Initialized); err != nil {
		return err
	}

	tlogger.Info("msg", "Building started", "path", b.rootDir)

	bm, err := b.createBuffers(ctx, b.tasks)
	if err != nil {
		tlogger.Error("msg", "Error building buffers", "err", err)
		return err
	}
	b.buffers = bm
	b.state = BuffersBuilt
	return nil
}

// ResolveImports hands the built buffers to resolver and keeps its result.
func (b *Builder) ResolveImports(resolver ImportResolver) error {
	if err := b.expect("resolve imports", BuffersBuilt); err != nil {
		return err
	}

	bm, err := resolver.Process(b.buffers)
	if err != nil {
		tlogger.Error("msg", "Error resolving imports", "err", err)
		return err
	}
	b.buffers = bm
	b.state = ImportsResolved
	return nil
}

// Write concatenates the buffers of every destination into the output directory.
func (b *Builder) Write() error {
	if err := b.expect("write", BuffersBuilt, ImportsResolved); err != nil {
		return err
	}

	manifest, err := writeBuffers(b.outputDir, b.buffers, b.cfg.Compress)
	if err != nil {
		return err
	}
	if b.cfg.Manifest {
		if err := writeManifest(b.outputDir, manifest); err != nil {
			return err
		}
	}

	tlogger.Info("msg", "Building finished", "path", b.outputDir, "destinations", len(manifest))
	b.state = Written
	return nil
}

// Sync copies the output directory into deployDir. It never fails the build:
// a skipped copy is logged and reported through Synced.
func (b *Builder) Sync(deployDir string) StepResult {
	if err := b.expect("sync", Written); err != nil {
		b.synced = skipped(deployDir, SkipMissingOutput, err.Error())
		logSkipped("sync", b.synced)
		return b.synced
	}

	b.synced = syncDirectory(b.outputDir, deployDir)
	if !b.synced.Done {
		if b.synced.Reason != SkipNoDeployDir {
			logSkipped("sync", b.synced)
		}
		return b.synced
	}

	tlogger.Info("msg", "Sync output", "from", b.outputDir, "to", deployDir)
	b.state = Synced
	return b.synced
}
