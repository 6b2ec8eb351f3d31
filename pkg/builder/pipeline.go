package builder

import (
	"context"

	"github.com/davecgh/go-spew/spew"
	"github.com/toastate/toastpack/internal/formatter"
	"github.com/toastate/toastpack/internal/imports"
	"github.com/toastate/toastpack/internal/tlogger"
	"github.com/toastate/toastpack/pkg/config"
)

// Run executes a complete build of cfg: init, buffers, imports, write and the
// optional deploy sync. The returned Builder is usable even on error, to
// inspect how far the build went.
func Run(ctx context.Context, cfg *config.Configuration) (*Builder, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	minifier, err := formatter.NewMinifier(cfg.Minifier)
	if err != nil {
		return nil, &Error{Kind: ErrConfig, Msg: err.Error()}
	}

	manager := imports.NewManager()
	formatters := formatter.New(formatter.Options{
		Minifier:       minifier,
		ScriptRewrites: cfg.HTML.ScriptRewrites,
		Version:        cfg.HTML.Version,
		Default:        cfg.DefaultFormatter,
	})

	b := NewBuilder(cfg, formatters, manager)

	if err := b.Init(); err != nil {
		return b, err
	}
	if err := b.BuildBuffers(ctx); err != nil {
		return b, err
	}
	if err := b.ResolveImports(manager); err != nil {
		return b, err
	}
	tlogger.Debug("msg", "buffers resolved", "buffers", spew.Sdump(b.buffers.Keys()))

	if err := b.Write(); err != nil {
		return b, err
	}
	b.Sync(cfg.DeployDir)
	return b, nil
}
