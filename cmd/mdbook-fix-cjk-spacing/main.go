// Command mdbook-fix-cjk-spacing is an mdBook preprocessor that removes the
// line breaks between CJK lines, so renderers do not show a stray space.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"

	"github.com/goliatone/go-cjkspacing/commands"
	preprocesscmd "github.com/goliatone/go-cjkspacing/internal/commands/preprocess"
	"github.com/goliatone/go-cjkspacing/internal/di"
	"github.com/goliatone/go-cjkspacing/internal/runtimeconfig"
)

const (
	name    = "mdbook-fix-cjk-spacing"
	version = "0.3.0"
)

// errUnsupported signals a negative supports answer; it maps to exit status
// 1 without a diagnostic.
var errUnsupported = errors.New("renderer not supported")

type cli struct {
	Config      string        `name:"config" help:"YAML configuration file." type:"path"`
	BookFile    string        `name:"book" help:"book.toml whose [preprocessor.fix-cjk-spacing] table applies in raw mode." type:"path"`
	LogProvider string        `name:"log-provider" help:"Logging provider (console, gologger)."`
	LogLevel    string        `name:"log-level" help:"Minimum log level."`
	LogFormat   string        `name:"log-format" help:"go-logger output format (json, console, pretty)."`
	Timeout     time.Duration `name:"timeout" help:"Abort processing after this long." default:"1m"`

	Version kong.VersionFlag `name:"version" help:"Print version information."`

	Supports supportsCmd `cmd:"" help:"Check whether a renderer is supported by this preprocessor."`
	Raw      rawCmd      `cmd:"" help:"Process raw markdown from stdin, e.g. cat mark.md | mdbook-fix-cjk-spacing raw."`
	Book     bookCmd     `cmd:"" default:"1" help:"Run the mdBook preprocessor protocol on stdin (default)."`
}

// app carries the process streams and parsed flags into command Run methods.
type app struct {
	cli    *cli
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

type supportsCmd struct {
	Renderer string `arg:"" help:"Renderer name, e.g. html."`
}

func (c *supportsCmd) Run(a *app) error {
	err := dispatch(a, false, preprocesscmd.SupportsRendererCommand{Renderer: c.Renderer})
	if errors.Is(err, preprocesscmd.ErrRendererUnsupported) {
		return fmt.Errorf("%w: %v", errUnsupported, err)
	}
	return err
}

type rawCmd struct{}

func (c *rawCmd) Run(a *app) error {
	return dispatch(a, true, preprocesscmd.JoinDocumentCommand{
		Input:  a.stdin,
		Output: a.stdout,
	})
}

type bookCmd struct{}

func (c *bookCmd) Run(a *app) error {
	return dispatch(a, false, preprocesscmd.PreprocessBookCommand{
		Input:       a.stdin,
		Output:      a.stdout,
		Diagnostics: a.stderr,
	})
}

// config layers the configuration sources: defaults, --config, the book.toml
// table (raw mode only) and finally the logging flags.
func (a *app) config(raw bool) (runtimeconfig.Config, error) {
	cfg := runtimeconfig.DefaultConfig()
	if a.cli.Config != "" {
		if err := runtimeconfig.LoadFile(a.cli.Config, &cfg); err != nil {
			return cfg, err
		}
	}
	if raw && a.cli.BookFile != "" {
		settings, err := runtimeconfig.LoadBookTOML(a.cli.BookFile)
		if err != nil {
			return cfg, err
		}
		settings.Apply(&cfg)
	}
	if v := strings.TrimSpace(a.cli.LogProvider); v != "" {
		cfg.Logging.Provider = v
	}
	if v := strings.TrimSpace(a.cli.LogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(a.cli.LogFormat); v != "" {
		cfg.Logging.Format = v
	}
	return cfg, nil
}

// dispatch builds a container for the layered configuration, subscribes its
// handlers and dispatches msg.
func dispatch[T command.Message](a *app, raw bool, msg T) error {
	cfg, err := a.config(raw)
	if err != nil {
		return err
	}

	restore := protectStdout(cfg)
	defer restore()

	container, err := di.NewContainer(cfg, di.WithLogWriter(a.stderr))
	if err != nil {
		return err
	}
	defer func() { _ = container.Close() }()

	ctx := context.Background()
	if a.cli.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cli.Timeout)
		defer cancel()
	}

	registration, err := commands.RegisterContainerCommands(container, commands.RegistrationOptions{
		Dispatcher: commands.Dispatcher(),
	})
	defer registration.Unsubscribe()
	if err != nil {
		return err
	}
	return dispatcher.Dispatch(ctx, msg)
}

// protectStdout points os.Stdout at stderr while go-logger is active, since
// stdout carries the preprocessor output. The protocol writer captured
// before the swap is unaffected.
func protectStdout(cfg runtimeconfig.Config) func() {
	if !strings.EqualFold(strings.TrimSpace(cfg.Logging.Provider), "gologger") {
		return func() {}
	}
	original := os.Stdout
	os.Stdout = os.Stderr
	return func() { os.Stdout = original }
}

type exitCode int

// run parses args and executes the selected command, returning the process
// exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) (status int) {
	var c cli
	parser, err := kong.New(&c,
		kong.Name(name),
		kong.Description("A mdbook preprocessor that will remove line breaks between CJK lines."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Vars{"version": version},
		kong.Exit(func(code int) { panic(exitCode(code)) }),
	)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 2
	}

	defer func() {
		if r := recover(); r != nil {
			code, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			status = int(code)
		}
	}()

	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "%s: error: %v\n", name, err)
		return 2
	}

	a := &app{cli: &c, stdin: stdin, stdout: stdout, stderr: stderr}
	if err := kctx.Run(a); err != nil {
		if errors.Is(err, errUnsupported) {
			return 1
		}
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
