package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fuzzylabs/docstringinator/internal/config"
	"github.com/fuzzylabs/docstringinator/internal/gitdiff"
	"github.com/fuzzylabs/docstringinator/internal/llm"
	"github.com/fuzzylabs/docstringinator/internal/output"
	"github.com/fuzzylabs/docstringinator/internal/pipeline"
)

// Overridden at build time via -ldflags.
var version = "0.2.0-dev"

var (
	flagConfig      string
	flagProvider    string
	flagModel       string
	flagAPIKey      string
	flagFormat      string
	flagTemperature float64
	flagDryRun      bool
	flagQuiet       bool
	flagChanged     bool
	flagBaseRef     string
)

var rootCmd = &cobra.Command{
	Use:   "docstringinator [target]",
	Short: "Add and improve Python docstrings with an LLM",
	Long: "docstringinator parses Python source, finds functions, methods, classes,\n" +
		"and modules with missing or incomplete docstrings, and rewrites them in\n" +
		"place using a configurable LLM backend.",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runFix,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file to the current directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.WriteDefault(config.DefaultConfigFile); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", config.DefaultConfigFile)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("docstringinator " + version)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to the configuration file")
	rootCmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (openai, anthropic, ollama, gemini)")
	rootCmd.Flags().StringVar(&flagModel, "model", "", "model name override")
	rootCmd.Flags().StringVar(&flagAPIKey, "api-key", "", "API key override")
	rootCmd.Flags().StringVar(&flagFormat, "format", "", "docstring style (google, numpy, restructuredtext)")
	rootCmd.Flags().Float64Var(&flagTemperature, "temperature", -1, "sampling temperature override")
	rootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "report changes without writing files")
	rootCmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress diffs and per-file detail")
	rootCmd.Flags().BoolVar(&flagChanged, "changed", false, "only process Python files changed in git")
	rootCmd.Flags().StringVar(&flagBaseRef, "base-ref", "", "git ref to diff against with --changed (default: working tree vs HEAD)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagProvider != "" {
		cfg.LLM.Provider = flagProvider
	}
	if flagModel != "" {
		cfg.LLM.Model = flagModel
	}
	if flagAPIKey != "" {
		cfg.LLM.APIKey = flagAPIKey
	}
	if flagFormat != "" {
		cfg.Format.Style = config.Style(flagFormat)
	}
	if flagTemperature >= 0 {
		cfg.LLM.Temperature = flagTemperature
	}
	if flagDryRun {
		cfg.Processing.DryRun = true
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runFix(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	gen, err := llm.NewGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	fixer := pipeline.New(cfg, gen)
	printer := output.NewPrinter(os.Stdout, cfg.Output.Verbose && !flagQuiet, cfg.Output.ShowDiff && !flagQuiet)

	var batch *pipeline.BatchResult
	switch {
	case flagChanged:
		files, err := gitdiff.ChangedPythonFiles(flagBaseRef)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Println("no changed Python files")
			return nil
		}
		batch, err = fixer.FixFiles(ctx, files)
		if err != nil {
			return err
		}
	default:
		target := "."
		if len(args) > 0 {
			target = args[0]
		}
		info, err := os.Stat(target)
		if err != nil {
			return err
		}
		if info.IsDir() {
			batch, err = fixer.FixDirectory(ctx, target)
			if err != nil {
				return err
			}
		} else {
			res, err := fixer.FixFile(ctx, target)
			if err != nil {
				return err
			}
			batch = &pipeline.BatchResult{Files: []*pipeline.FileResult{res}}
		}
	}

	for _, res := range batch.Files {
		printer.File(res)
	}
	printer.Batch(batch)

	if len(batch.Failed) > 0 {
		return fmt.Errorf("%d file(s) could not be processed", len(batch.Failed))
	}
	return nil
}
