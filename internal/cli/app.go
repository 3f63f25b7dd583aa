// Package cli implements the tasktrack command-line interface: global flag
// parsing, command dispatch, output formatting and error reporting.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/leeovery/tasktrack/internal/config"
	"github.com/leeovery/tasktrack/internal/store"
)

// App is the CLI application.
type App struct {
	Stdout io.Writer
	Stderr io.Writer
	// Cwd anchors relative paths and the project config file.
	Cwd string
	// Getenv reads environment variables. Nil ignores the environment.
	Getenv func(string) string
	// UserConfigDir is the user's config root. Empty skips the user config file.
	UserConfigDir string

	flags        globalFlags
	config       *config.Config
	formatConfig FormatConfig
	logger       *log.Logger
}

// globalFlags holds flags parsed before the command name.
type globalFlags struct {
	file    string
	quiet   bool
	verbose bool
	toon    bool
	pretty  bool
	json    bool
	help    bool
}

// handler runs one command with the arguments that follow its name.
type handler func(a *App, args []string) error

// handlers maps command names to their implementation. help is dispatched
// before configuration is loaded and is not listed here.
var handlers = map[string]handler{
	"add":              (*App).runAdd,
	"update":           (*App).runUpdate,
	"delete":           (*App).runDelete,
	"mark-in-progress": (*App).runMarkInProgress,
	"mark-done":        (*App).runMarkDone,
	"list":             (*App).runList,
	"clean":            (*App).runClean,
	"stats":            (*App).runStats,
	"check":            (*App).runCheck,
	"rebuild":          (*App).runRebuild,
}

// Run parses args and dispatches the command, returning the process exit
// code. args[0] is the program name.
func (a *App) Run(args []string) int {
	if len(args) > 0 {
		args = args[1:]
	}

	subcmd, cmdArgs, err := a.parseGlobalFlags(args)
	if err != nil {
		return a.report(err)
	}

	if a.flags.help {
		if subcmd != "" && subcmd != "help" {
			cmdArgs = []string{subcmd}
		}
		return a.report(a.runHelp(cmdArgs))
	}

	switch subcmd {
	case "":
		fmt.Fprintln(a.Stdout, "Warning: no command provided.")
		fmt.Fprintln(a.Stdout)
		printTopLevelHelp(a.Stdout)
		return 1
	case "help":
		return a.report(a.runHelp(cmdArgs))
	}

	h, ok := handlers[subcmd]
	if !ok {
		return a.report(&UnknownCommandError{Name: subcmd})
	}

	if err := a.setup(); err != nil {
		return a.report(err)
	}
	a.logger.Debug("dispatching command", "command", subcmd, "file", a.config.File)

	return a.report(h(a, cmdArgs))
}

// parseGlobalFlags consumes flags up to the first non-flag argument, which is
// the command name. Everything after it belongs to the command.
func (a *App) parseGlobalFlags(args []string) (string, []string, error) {
	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch {
		case arg == "--quiet" || arg == "-q":
			a.flags.quiet = true
		case arg == "--verbose" || arg == "-v":
			a.flags.verbose = true
		case arg == "--toon":
			a.flags.toon = true
		case arg == "--pretty":
			a.flags.pretty = true
		case arg == "--json":
			a.flags.json = true
		case arg == "--help" || arg == "-h":
			a.flags.help = true
		case arg == "--file" || arg == "-f":
			if i+1 >= len(args) || args[i+1] == "" {
				return "", nil, fmt.Errorf("%s requires a path", arg)
			}
			i++
			a.flags.file = args[i]
		case strings.HasPrefix(arg, "--file="):
			a.flags.file = strings.TrimPrefix(arg, "--file=")
			if a.flags.file == "" {
				return "", nil, errors.New("--file requires a path")
			}
		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			return "", nil, fmt.Errorf("unknown flag '%s'. Run 'tasktrack help' for usage.", arg)
		default:
			return arg, args[i+1:], nil
		}
	}
	return "", nil, nil
}

// setup resolves configuration, the logger and the output format.
func (a *App) setup() error {
	logLevel := ""
	if a.flags.verbose {
		logLevel = "debug"
	}

	cfg, err := config.Load(
		config.Sources{WorkDir: a.Cwd, UserConfigDir: a.UserConfigDir, Getenv: a.Getenv},
		config.Overrides{File: a.flags.file, LogLevel: logLevel},
	)
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	a.config = cfg
	a.logger = newLogger(a.Stderr, cfg.LogLevel)

	format, err := ResolveFormat(a.flags.toon, a.flags.pretty, a.flags.json, cfg.Format, DetectTTY(a.Stdout))
	if err != nil {
		return err
	}
	a.formatConfig = FormatConfig{
		Format: format,
		Quiet:  a.flags.quiet,
	}
	a.logger.Debug("configuration resolved", "format", format, "cache", cfg.Cache, "log_level", cfg.LogLevel)
	return nil
}

// openStore opens the store described by the resolved configuration.
func (a *App) openStore() (*store.Store, error) {
	return store.New(store.Config{
		Path:        a.config.File,
		StateDir:    a.config.StateDir,
		LockTimeout: a.config.LockTimeout,
		Cache:       a.config.Cache,
	}, store.WithLogger(a.logger))
}

// formatter returns the formatter for the resolved output format.
func (a *App) formatter() Formatter {
	return a.formatConfig.Formatter()
}

// print writes already-formatted output unless quiet mode is on.
func (a *App) print(s string) {
	if a.formatConfig.Quiet {
		return
	}
	fmt.Fprint(a.Stdout, s)
}

// report prints err according to its kind and returns the exit code.
// Input problems are warnings on stdout; everything else goes to stderr.
func (a *App) report(err error) int {
	if err == nil {
		return 0
	}

	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}

	if isUserError(err) {
		fmt.Fprintf(a.Stdout, "Warning: %s\n", capitalize(err.Error()))
		return 1
	}

	var corrupt *store.CorruptStoreError
	if errors.As(err, &corrupt) {
		fmt.Fprintf(a.Stderr, "Error: %s\n", err)
		fmt.Fprintln(a.Stderr, "Run 'tasktrack check' for details, or fix the file by hand.")
		return 1
	}

	fmt.Fprintf(a.Stderr, "Error: %s\n", err)
	return 1
}

// capitalize upper-cases the first byte of an ASCII message.
func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
