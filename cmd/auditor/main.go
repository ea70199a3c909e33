package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aiact-formation/auditor/internal/questions"
	"github.com/aiact-formation/auditor/internal/scoring"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "auditor",
		Short:        "AI Act compliance audit scoring and reporting",
		SilenceUsage: true,
	}

	serve := serveCmd()
	root.AddCommand(serve, scoreCmd(), reportCmd(), questionsCmd(), deliveriesCmd(), quizCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `auditor --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

// addEngineFlags registers the flags every scoring command shares.
func addEngineFlags(f *pflag.FlagSet) {
	f.String("questions", "", "Path to an external question bank JSON file (default: embedded bank)")
	f.String("policy", "", "Path to an external budget policy YAML file (default: embedded policy)")
	f.StringP("lang", "l", "fr", "Report and message language (fr, en)")
	addLogFlags(f)
}

func addLogFlags(f *pflag.FlagSet) {
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("AUDITOR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("auditor")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/auditor")
	v.AddConfigPath("/etc/auditor")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// sources describes where the bank and policy were loaded from.
type sources struct {
	bank   string
	policy string
}

// loadEngine builds the scoring engine from the embedded or external bank
// and policy.
func loadEngine(v *viper.Viper) (*scoring.Engine, sources, error) {
	src := sources{bank: "embedded", policy: "embedded"}

	var bank *questions.Bank
	var err error
	if path := v.GetString("questions"); path != "" {
		bank, err = questions.LoadFile(path)
		src.bank = path
	} else {
		bank, err = questions.Default()
	}
	if err != nil {
		return nil, src, fmt.Errorf("load question bank: %w", err)
	}

	var policy *scoring.Policy
	if path := v.GetString("policy"); path != "" {
		policy, err = scoring.LoadPolicy(path)
		src.policy = path
	} else {
		policy, err = scoring.DefaultPolicy()
	}
	if err != nil {
		return nil, src, fmt.Errorf("load policy: %w", err)
	}

	slog.Debug("scoring engine ready",
		"bank", src.bank,
		"bank_version", bank.Version,
		"questions", len(bank.Questions),
		"policy", src.policy,
	)
	return scoring.New(bank, policy), src, nil
}

// readInput reads a file, or stdin when path is empty or "-".
func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// writeOutput writes data to a file, or stdout when path is empty or "-".
func writeOutput(path string, data []byte) (err error) {
	if path == "" || path == "-" {
		if _, err := os.Stdout.Write(data); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output file: %w", cerr)
		}
	}()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// writeJSON writes v as indented JSON with a trailing newline.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	return writeOutput(path, append(data, '\n'))
}
