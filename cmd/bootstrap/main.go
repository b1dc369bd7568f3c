package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/eugenenazirov/bootstrap/internal/application"
	"github.com/eugenenazirov/bootstrap/internal/config"
	"github.com/eugenenazirov/bootstrap/internal/version"
)

const banner = `
████████╗██╗████████╗██╗     ███████╗
╚══██╔══╝██║╚══██╔══╝██║     ██╔════╝
   ██║   ██║   ██║   ██║     █████╗
   ██║   ██║   ██║   ██║     ██╔══╝
   ██║   ██║   ██║   ███████╗███████╗
   ╚═╝   ╚═╝   ╚═╝   ╚══════╝╚══════╝
`

const subtitle = "Project bootstrap ☃"

type cli struct {
	app *kingpin.Application

	info    *kingpin.CmdClause
	dirs    *kingpin.CmdClause
	version *kingpin.CmdClause

	configFile string
	root       string
	envFile    string
	logLevel   string
	logFile    string
	name       string
	logFormat  string
}

func newCLI() *cli {
	c := &cli{
		app: kingpin.New("bootstrap", "Project bootstrap - resolves project directories, loads .env and configures logging"),
	}

	c.app.Flag("config", "Path to YAML configuration file").StringVar(&c.configFile)
	c.app.Flag("root", "Project root (discovered from the working directory when empty)").StringVar(&c.root)
	c.app.Flag("env-file", "Path to the .env file (discovered when empty)").StringVar(&c.envFile)
	c.app.Flag("log-level", "Console log level (debug, info, warning, error, critical)").StringVar(&c.logLevel)
	c.app.Flag("log-file", "true for the default log file, false to disable, or a file path").StringVar(&c.logFile)
	c.app.Flag("name", "Logger name").StringVar(&c.name)
	c.app.Flag("log-format", "Log format (console, json)").StringVar(&c.logFormat)

	c.info = c.app.Command("info", "Print the banner, version, project directories and log file").Default()
	c.dirs = c.app.Command("dirs", "Print the project directories as NAME=path lines")
	c.version = c.app.Command("version", "Print the version")

	return c
}

func (c *cli) overrides() *config.CLIOverrides {
	overrides := &config.CLIOverrides{
		ConfigFile: c.configFile,
	}

	if c.root != "" {
		overrides.Root = &c.root
	}

	if c.envFile != "" {
		overrides.EnvFile = &c.envFile
	}

	if c.logLevel != "" {
		overrides.LogLevel = &c.logLevel
	}

	if c.logFile != "" {
		overrides.LogFile = &c.logFile
	}

	if c.name != "" {
		overrides.LoggerName = &c.name
	}

	if c.logFormat != "" {
		overrides.LogFormat = &c.logFormat
	}

	return overrides
}

func main() {
	c := newCLI()
	command := kingpin.MustParse(c.app.Parse(os.Args[1:]))

	if command == c.version.FullCommand() {
		fmt.Fprintln(os.Stdout, version.Version)
		return
	}

	cfg, err := config.Load(c.overrides())
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	app, err := application.New(cfg)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize application: %v", err))
	}
	defer func() {
		_ = app.Close()
	}()

	logger := app.Logger()

	switch command {
	case c.dirs.FullCommand():
		err = printDirs(os.Stdout, app)
	default:
		err = printInfo(os.Stdout, app)
	}
	if err != nil {
		logger.Fatal("failed to write output", zap.Error(err))
	}

	logger.Info("bootstrap complete", zap.String("command", command))
}

func printDirs(w io.Writer, app *application.App) error {
	for _, entry := range app.Layout().Entries() {
		if _, err := fmt.Fprintf(w, "%s=%s\n", entry[0], entry[1]); err != nil {
			return err
		}
	}
	return nil
}

func printInfo(w io.Writer, app *application.App) error {
	title := color.New(color.FgCyan, color.Bold)
	var b strings.Builder

	b.WriteString(title.Sprint(banner))
	fmt.Fprintf(&b, "%10s%s\n\n", "", subtitle)
	fmt.Fprintf(&b, "version: %s\n", version.Version)

	logger := app.Logger()
	fmt.Fprintf(&b, "LOGLEVEL: %s\n", strings.ToUpper(logger.ConsoleLevel().String()))
	if path := logger.FilePath(); path != "" {
		fmt.Fprintf(&b, "Log file: %s\n", path)
	} else {
		b.WriteString("Log file: disabled\n")
	}

	if env := app.EnvFile(); env != "" {
		fmt.Fprintf(&b, "Env file: %s (%d keys)\n", env, len(app.LoadedEnv()))
	} else {
		b.WriteString("Env file: none found\n")
	}
	b.WriteString("\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	return printDirs(w, app)
}
