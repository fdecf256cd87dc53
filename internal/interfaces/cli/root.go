// Package cli wires the bdst commands: flag registration, configuration
// loading, logger construction, and evaluator assembly for the subcommands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/verdantlab/bdst/internal/config"
	"github.com/verdantlab/bdst/internal/domain/risk"
	"github.com/verdantlab/bdst/internal/infrastructure/monitoring/logging"
	"github.com/verdantlab/bdst/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// rootOptions holds global CLI flags. Empty string means "not set": the
// value then comes from the app config (file, BDST_* env, or default).
type rootOptions struct {
	ConfigPath      string
	LogLevel        string
	LogFormat       string
	RulesFile       string
	TokenRulesFile  string
	HazardRulesFile string
	NoColor         bool
}

// CLIContext carries initialized dependencies through the command tree.
// The evaluator is built per command so that commands that never touch the
// rule documents (version, summarize) run without them.
type CLIContext struct {
	Config *config.Config
	Logger logging.Logger
}

// NewRootCommand creates the root cobra command with all global flags and
// subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "bdst",
		Short: "Decision-support risk cards for plant records",
		Long: "bdst turns tabular plant records (edibility and medicinal ratings, free-text\n" +
			"properties and hazards) into conservative GREEN/AMBER/RED risk cards, and ships\n" +
			"the batch, summary, and acceptance tooling around the rule engine.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "app config file (default: bdst.yaml in . or ./configs)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")
	pf.StringVar(&opts.LogFormat, "log-format", "", "log format: json or console (default from config)")
	pf.StringVar(&opts.RulesFile, "rules", "", "risk rules document (default from config)")
	pf.StringVar(&opts.TokenRulesFile, "token-rules", "", "token normalization document (default from config)")
	pf.StringVar(&opts.HazardRulesFile, "hazard-rules", "", "hazard text normalization document (default from config)")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")

	cmd.AddCommand(
		NewEvaluateCmd(),
		NewBatchCmd(),
		NewSummarizeCmd(),
		NewAcceptanceCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// persistentPreRun loads configuration, applies flag overrides, builds the
// logger, and stores the CLIContext on the command context.
func persistentPreRun(cmd *cobra.Command, opts *rootOptions) error {
	if opts.NoColor {
		color.NoColor = true
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "build logger")
	}

	cliCtx := &CLIContext{Config: cfg, Logger: logger}
	cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cliCtx))
	return nil
}

// loadConfig resolves the app config with precedence flag > env > file >
// default. The loader already folds env and defaults in; flag values are
// overlaid afterwards and the result re-validated.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath != "" {
		cfg, err = config.Load(opts.ConfigPath)
	} else {
		cfg, err = config.LoadOrDiscover()
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigInvalid, "load app config")
	}

	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.Log.Format = opts.LogFormat
	}
	if opts.RulesFile != "" {
		cfg.Rules.RulesFile = opts.RulesFile
	}
	if opts.TokenRulesFile != "" {
		cfg.Rules.TokenRulesFile = opts.TokenRulesFile
	}
	if opts.HazardRulesFile != "" {
		cfg.Rules.HazardRulesFile = opts.HazardRulesFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigInvalid, "apply command-line overrides")
	}
	return cfg, nil
}

// GetCLIContext extracts the CLIContext stored by persistentPreRun.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New(errors.CodeInternal, "command context not initialized")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.New(errors.CodeInternal, "command context not initialized")
	}
	return cliCtx, nil
}

// newEvaluator loads and compiles the three rule documents named by the
// resolved configuration.
func newEvaluator(cliCtx *CLIContext) (*risk.Evaluator, error) {
	r := cliCtx.Config.Rules
	return risk.LoadEvaluator(r.RulesFile, r.TokenRulesFile, r.HazardRulesFile)
}

// Execute runs the CLI and reports any error on stderr. The caller decides
// the process exit code.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		return err
	}
	return nil
}

// writeJSON writes v to w as 2-space-indented JSON with HTML escaping off,
// the format every bdst artifact uses.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
