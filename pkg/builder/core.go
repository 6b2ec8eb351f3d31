package builder

import (
	"github.com/toastate/toastpack/internal/buffers"
	"github.com/toastate/toastpack/internal/files"
	"github.com/toastate/toastpack/internal/formatter"
	"github.com/toastate/toastpack/pkg/config"
)

// State is the step a Builder reached. Steps run in declaration order.
type State int

const (
	Created State = iota
	Initialized
	BuffersBuilt
	ImportsResolved
	Written
	Synced
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Initialized:
		return "initialized"
	case BuffersBuilt:
		return "buffers built"
	case ImportsResolved:
		return "imports resolved"
	case Written:
		return "written"
	case Synced:
		return "synced"
	}
	return "unknown"
}

// ImportResolver rewrites a built buffers map, e.g. imports.Manager.
type ImportResolver interface {
	Process(*buffers.Map) (*buffers.Map, error)
}

type Builder struct {
	cfg        *config.Configuration
	formatters *formatter.Set
	spy        files.Spy

	state State

	rootDir   string
	outputDir string

	tasks   []ResolvedTask
	buffers *buffers.Map

	cleared StepResult
	synced  StepResult
}

// NewBuilder prepares a build of cfg. Script formatters report the lines they read to spy.
func NewBuilder(cfg *config.Configuration, formatters *formatter.Set, spy files.Spy) *Builder {
	if cfg == nil {
		cfg = config.Default()
	}
	if formatters == nil {
		formatters = formatter.New(formatter.Options{})
	}
	return &Builder{
		cfg:        cfg,
		formatters: formatters,
		spy:        spy,
	}
}

func (b *Builder) State() State {
	return b.state
}

func (b *Builder) RootDir() string {
	return b.rootDir
}

// OutputDir is the absolute path of the output directory, known once initialized.
func (b *Builder) OutputDir() string {
	return b.outputDir
}

func (b *Builder) Tasks() []ResolvedTask {
	return b.tasks
}

// Buffers returns the buffers map once it has been built.
func (b *Builder) Buffers() (*buffers.Map, error) {
	if b.buffers == nil {
		return nil, b.stateError("buffers", BuffersBuilt)
	}
	return b.buffers, nil
}

// Cleared reports what happened to the previous output directory during Init.
func (b *Builder) Cleared() StepResult {
	return b.cleared
}

func (b *Builder) Synced() StepResult {
	return b.synced
}

func (b *Builder) expect(op string, allowed ...State) error {
	for _, s := range allowed {
		if b.state == s {
			return nil
		}
	}
	return b.stateError(op, allowed...)
}

func (b *Builder) stateError(op string, want ...State) error {
	names := ""
	for i, s := range want {
		if i > 0 {
			names += " or "
		}
		names += s.String()
	}
	return &Error{Kind: ErrState, Msg: op + " requires state " + names + ", builder is " + b.state.String()}
}
