package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/backwardspy/whiskers2"
	"github.com/backwardspy/whiskers2/internal/format"
	"github.com/backwardspy/whiskers2/internal/logger"
)

var (
	flagFlavor             string
	flagHexCaps            bool
	flagHexPrefix          string
	flagColorOverrides     string
	flagColorOverridesFile string
	flagOverrides          string
	flagOverridesFile      string
	flagDryRun             bool
	flagOutputDir          string
	flagCheck              string
	flagFormat             string
	flagFmtCheck           bool
	flagLogLevel           string
	flagLogJSON            bool

	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "whiskers2 <template>",
	Short: "Render theme templates against the Catppuccin palette",
	Long: "Render a template once to stdout, or once per combination of its matrix into files.\n" +
		"Pass - as the template path to read the template from stdin.",
	Version:           whiskers2.Version,
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: setupLogger,
	RunE:              runRender,
	SilenceErrors:     true,
	SilenceUsage:      true,
}

var renderCmd = &cobra.Command{
	Use:   "render <template>",
	Short: "Render a template (default command)",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

var paletteCmd = &cobra.Command{
	Use:   "palette",
	Short: "Print the palette as JSON, YAML or HCL",
	Args:  cobra.NoArgs,
	RunE:  runPalette,
}

var checkCmd = &cobra.Command{
	Use:   "check <template>",
	Short: "Validate a template without rendering it",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

var fmtCmd = &cobra.Command{
	Use:   "fmt [files...]",
	Short: "Format color override files",
	Long:  "Format one or more HCL color override files in-place. Prints the name of each file that was modified.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFmt,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), whiskers2.Version)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&flagHexCaps, "hex-caps", false, "capitalize hex strings")
	pf.StringVar(&flagHexPrefix, "hex-prefix", "", "prefix for hex strings, e.g. \"#\"")
	pf.StringVar(&flagColorOverrides, "color-overrides", "", `color overrides as JSON or YAML, e.g. '{"all": {"base": "#000000"}}'`)
	pf.StringVar(&flagColorOverridesFile, "color-overrides-file", "", "HCL file with color overrides")
	pf.StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.BoolVar(&flagLogJSON, "log-json", false, "write logs as JSON")

	for _, cmd := range []*cobra.Command{rootCmd, renderCmd} {
		f := cmd.Flags()
		f.StringVarP(&flagFlavor, "flavor", "f", "", "render a single flavor")
		f.StringVar(&flagOverrides, "overrides", "", "frontmatter overrides as JSON or YAML")
		f.StringVar(&flagOverridesFile, "overrides-file", "", "file with frontmatter overrides (JSON or YAML)")
		f.BoolVar(&flagDryRun, "dry-run", false, "report matrix files instead of writing them")
		f.StringVar(&flagOutputDir, "output-dir", "", "directory for matrix output files")
		f.StringVar(&flagCheck, "check", "", "compare single-file output with this file instead of printing it")
	}

	checkCmd.Flags().StringVarP(&flagFlavor, "flavor", "f", "", "check as if rendering a single flavor")
	paletteCmd.Flags().StringVarP(&flagFormat, "format", "o", string(format.JSON), "output format (json, yaml, hcl)")
	fmtCmd.Flags().BoolVarP(&flagFmtCheck, "check", "c", false, "check if files are formatted (do not write changes)")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(paletteCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(versionCmd)
}

func setupLogger(cmd *cobra.Command, args []string) error {
	l, err := logger.New(logger.Options{
		Level:         flagLogLevel,
		HumanReadable: !flagLogJSON,
		Writer:        cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("configuring logger: %w", err)
	}
	log = l
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if log != nil {
			log.Error(err, "whiskers2 failed")
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
