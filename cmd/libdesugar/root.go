package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/albertocavalcante/go-libdesugar"
	"github.com/albertocavalcante/go-libdesugar/document"
	"github.com/albertocavalcante/go-libdesugar/emulated"
)

// envPrefix prefixes environment overrides, e.g. LIBDESUGAR_MIN_API.
const envPrefix = "LIBDESUGAR"

// configName is the config file looked up in the working directory.
const configName = "libdesugar"

// app carries the state shared by every subcommand.
type app struct {
	v      *viper.Viper
	logger *slog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "libdesugar",
		Short: "Inspect desugared library specifications",
		Long: `libdesugar loads a desugared library specification (JSON, YAML, TOML or
Starlark) and answers the questions a bytecode rewriter asks of it.

Examples:
  libdesugar validate desugar.json
  libdesugar rename desugar.json java.time.Instant
  libdesugar plan desugar.json classes.json com.example.MyList
  libdesugar catalog desugar.json surface.json --out supported.txt`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (JSON, YAML or TOML)")
	flags.Int("min-api", 0, "minimum API level the build targets")
	flags.String("mode", "library", "compilation mode for ranged flag groups (library or program)")
	flags.String("tie-break", "declaration-order", "default-method tie-break policy (declaration-order or strict)")
	flags.Int("workers", 0, "concurrent workers (0 uses GOMAXPROCS)")
	flags.Bool("lenient", false, "skip schema checks and tolerate unknown document fields")
	flags.BoolP("verbose", "v", false, "enable debug logging")

	for _, name := range []string{"min-api", "mode", "tie-break", "workers", "lenient", "verbose"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		newValidateCommand(a),
		newRenameCommand(a),
		newPlanCommand(a),
		newCatalogCommand(a),
		newExportCommand(a),
		newDiffCommand(a),
	)
	return root
}

// init reads the config file and sets up logging on stderr. Without
// --config, a libdesugar.{json,yaml,toml} in the working directory is used
// when present.
func (a *app) init(cmd *cobra.Command) error {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		a.v.SetConfigName(configName)
		a.v.AddConfigPath(".")
		if err := a.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("read config: %w", err)
			}
		}
	}
	a.logger = newLogger(cmd.ErrOrStderr(), a.v.GetBool("verbose"))
	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debug("using config file", "path", used)
	}
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	handler := log.NewWithOptions(w, log.Options{Prefix: "libdesugar"})
	if verbose {
		handler.SetLevel(log.DebugLevel)
	} else {
		handler.SetLevel(log.WarnLevel)
	}
	return slog.New(handler)
}

// options translates the resolved flags into session options.
func (a *app) options() ([]libdesugar.Option, error) {
	mode, err := document.ParseMode(a.v.GetString("mode"))
	if err != nil {
		return nil, err
	}
	policy, err := emulated.ParseTieBreakPolicy(a.v.GetString("tie-break"))
	if err != nil {
		return nil, err
	}
	return []libdesugar.Option{
		libdesugar.WithMinAPILevel(a.v.GetInt("min-api")),
		libdesugar.WithMode(mode),
		libdesugar.WithTieBreak(policy),
		libdesugar.WithWorkers(a.v.GetInt("workers")),
		libdesugar.WithStrictSchema(!a.v.GetBool("lenient")),
		libdesugar.WithLogger(a.logger),
	}, nil
}

// load opens the specification at path with the resolved flags.
func (a *app) load(path string) (*libdesugar.Session, error) {
	opts, err := a.options()
	if err != nil {
		return nil, err
	}
	a.logger.Debug("loading specification", "path", path, "min_api", a.v.GetInt("min-api"))
	return libdesugar.LoadFile(path, opts...)
}
