package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/validate-docs/internal/config"
	docerrors "github.com/conneroisu/validate-docs/internal/errors"
	"github.com/conneroisu/validate-docs/internal/logging"
	"github.com/conneroisu/validate-docs/internal/report"
	"github.com/conneroisu/validate-docs/internal/rules"
	"github.com/conneroisu/validate-docs/internal/scanner"
)

var (
	cfgFile string
	// configErr is the failure to read a config file, reported by every
	// command that loads the configuration.
	configErr error
)

// rootCmd validates pages when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "validate-docs [file-or-dir...]",
	Short: "Check component reference pages against the documentation style guide",
	Long: `validate-docs checks component reference pages against the documentation
style guide: front matter, section order, table schemas, fallback sentences
and placeholder conventions.

With no arguments the current directory is validated. Directories are walked
recursively for *.md files; _index.md pages are skipped by default.

Examples:
  validate-docs docs/sources/reference/components
  validate-docs --strict loki.source.file.md
  validate-docs --format json docs > report.json`,
	RunE:          runValidate,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExitError carries a non-zero process exit code out of a command.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .validate-docs.yml, can also use VALIDATE_DOCS_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.Flags().Bool("strict", false, "fail on warnings and hints as well as errors")
	rootCmd.Flags().StringP("format", "f", report.FormatText, "output format (text, json)")
	rootCmd.Flags().IntP("workers", "w", 0, "pages validated in parallel (default: number of CPUs)")
	rootCmd.Flags().StringSlice("exclude", nil, "file name or relative path glob to skip (repeatable); replaces the default _index.md, so repeat it to keep skipping index pages")

	_ = viper.BindPFlag("validation.strict", rootCmd.Flags().Lookup("strict"))
	_ = viper.BindPFlag("validation.format", rootCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("validation.workers", rootCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("validation.exclude", rootCmd.Flags().Lookup("exclude"))
}

// initConfig initializes the configuration system. Flags win over
// VALIDATE_DOCS_ environment variables, which win over the config file.
//
// Configuration file priority (highest to lowest):
//  1. --config flag
//  2. VALIDATE_DOCS_CONFIG_FILE environment variable
//  3. .validate-docs.yml in the current directory
//
// Every key can also be set through the environment with the VALIDATE_DOCS_
// prefix, e.g. VALIDATE_DOCS_VALIDATION_STRICT=true.
func initConfig() {
	configErr = readConfig()
}

// readConfig points viper at the config file and reads it. Only the default
// .validate-docs.yml may be absent.
func readConfig() error {
	explicit := cfgFile
	if explicit == "" {
		explicit = os.Getenv("VALIDATE_DOCS_CONFIG_FILE")
	}

	if explicit != "" {
		viper.SetConfigFile(explicit)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".validate-docs")
	}

	viper.SetEnvPrefix("VALIDATE_DOCS")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); notFound && explicit == "" {
			return nil
		}
		cerr := docerrors.NewConfigError(docerrors.ErrCodeConfigInvalid, "cannot read config file")
		cerr.Cause = err
		return cerr.WithLocation(viper.ConfigFileUsed(), 0)
	}
	return nil
}

// session is what every command needs once configuration is loaded.
type session struct {
	cfg     *config.Config
	logger  *logging.DocsLogger
	scanner *scanner.PageScanner
}

func newSession(cmd *cobra.Command) (*session, error) {
	if configErr != nil {
		return nil, configErr
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})

	if result := config.ValidateConfigWithDetails(cfg); result.HasWarnings() {
		logger.Warn(cmd.Context(), nil, "Configuration has warnings",
			"details", strings.TrimSpace(result.String()))
	}

	validator := rules.NewValidator(rules.Options{
		Exceptions: cfg.AllowList(),
		ExtraTypes: cfg.Validation.ExtraTypes,
	})

	return &session{
		cfg:    cfg,
		logger: logger,
		scanner: scanner.NewPageScanner(validator, scanner.Options{
			Include: cfg.Validation.Include,
			Exclude: cfg.Validation.Exclude,
			Workers: cfg.Validation.Workers,
			Logger:  logger,
		}),
	}, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runValidate(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	if len(args) == 0 {
		args = []string{"."}
	}

	op := s.logger.StartOperation("validate")

	files, err := s.scanner.Discover(ctx, args...)
	if err != nil {
		return err
	}

	reports, runErr := s.scanner.ValidateAll(ctx, files)
	if runErr != nil {
		s.logger.Warn(ctx, runErr, "Printing partial results")
	}

	if err := report.Render(cmd.OutOrStdout(), s.cfg.Validation.Format, reports); err != nil {
		return err
	}

	code := report.ExitCode(reports, s.cfg.Validation.Strict)
	op.End(ctx, "files", len(files), "exit_code", code)

	if code == report.ExitOK && runErr != nil {
		code = report.ExitViolations
	}
	if code != report.ExitOK {
		return &ExitError{Code: code}
	}
	return nil
}
