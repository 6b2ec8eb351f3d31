package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/toastate/toastpack/internal/tlogger"
	"github.com/toastate/toastpack/internal/version"
	"github.com/toastate/toastpack/pkg/builder"
	"github.com/toastate/toastpack/pkg/config"
	"github.com/toastate/toastpack/pkg/server"
)

var CLI struct {
	Build    CommandBuild    `cmd:"" aliases:"b" help:"Builds the project bundles into the output directory."`
	Prebuild CommandPrebuild `cmd:"" aliases:"p" help:"Stamps the version into the constants and html files."`
	Serve    CommandServe    `cmd:"" aliases:"s" help:"Serve the output directory."`

	ConfigFile string `short:"c" help:"configuration file path (optional)"`
}

// Globals is bound to every command.
type Globals struct {
	Config *config.Configuration
	Ctx    context.Context
}

type CommandBuild struct {
	RootDir   string `help:"Project root directory." type:"existingdir"`
	DeployDir string `help:"Copy the output directory there once built."`
	Minifier  string `help:"Minifier engine: tdewolff or esbuild."`
	Manifest  bool   `help:"Write the build manifest."`
	Compress  bool   `help:"Write brotli companions of text outputs."`

	Verbose int `short:"v" help:"Print verbose output." type:"counter"`
}

type CommandPrebuild struct {
	RootDir string `help:"Project root directory." type:"existingdir"`
	Version string `help:"Version to stamp, DD.MM.YYYY. Defaults to today."`

	Verbose int `short:"v" help:"Print verbose output." type:"counter"`
}

type CommandServe struct {
	RootDir string `help:"Project root directory." type:"existingdir"`
	Build   bool   `negatable:"" default:"true" help:"Run a build before serving."`

	Port int `short:"p" help:"Listener port"`

	Verbose int `short:"v" help:"Print verbose output." type:"counter"`
}

func main() {
	ctx := kong.Parse(&CLI, kong.UsageOnError())

	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatal(err)
	}

	cfg, err := config.Load(CLI.ConfigFile)
	if err != nil {
		log.Fatal(err)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = ctx.Run(&Globals{Config: cfg, Ctx: runCtx})
	tlogger.FatalIf(err)
}

func applyVerbose(v int) {
	switch v {
	case 0:
		tlogger.ApplyLogLevel("info")
	case 1:
		tlogger.ApplyLogLevel("debug")
	default:
		tlogger.ApplyLogLevel("all")
	}
}

func (r *CommandBuild) Run(g *Globals) error {
	applyVerbose(r.Verbose)
	cfg := g.Config

	if r.RootDir != "" {
		cfg.RootDir = r.RootDir
	}
	if r.DeployDir != "" {
		cfg.DeployDir = r.DeployDir
	}
	if r.Minifier != "" {
		cfg.Minifier = r.Minifier
	}
	cfg.Manifest = cfg.Manifest || r.Manifest
	cfg.Compress = cfg.Compress || r.Compress

	start := time.Now()
	b, err := builder.Run(g.Ctx, cfg)
	if err != nil {
		return err
	}

	tlogger.Info("msg", "Build done", "output", b.OutputDir(), "duration", time.Since(start))
	return nil
}

func (r *CommandPrebuild) Run(g *Globals) error {
	applyVerbose(r.Verbose)
	cfg := g.Config

	if r.RootDir != "" {
		cfg.RootDir = r.RootDir
	}
	if r.Version == "" {
		r.Version = version.Today(time.Now())
	}

	res, err := version.Stamp(cfg.RootDir, cfg.Version, r.Version)
	if err != nil {
		return err
	}

	tlogger.Info("msg", "Version stamped", "version", res.Version, "files", len(res.Files), "skipped", len(res.Skipped))
	return nil
}

func (r *CommandServe) Run(g *Globals) error {
	applyVerbose(r.Verbose)
	cfg := g.Config

	if r.RootDir != "" {
		cfg.RootDir = r.RootDir
	}
	if r.Port > 0 {
		cfg.ServeConfig.Port = r.Port
	}

	serv := server.NewServer(cfg)
	return serv.Start(g.Ctx, r.Build)
}
