package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/catadoc/catadoc"
)

var (
	cfgFile string
	dbURL   string
	format  string
	outFile string
	outDir  string
	include []string
	exclude []string
	title   string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "catadoc",
	Short: "Generate documentation from a database's system catalog",
	Long: `Catadoc reads the system catalog of a PostgreSQL, MySQL, or SQLite
database (or a previously generated XML dump) and renders it as browsable
HTML, a SQL COMMENT script, or an XML dump for offline use.`,
	Args: cobra.MaximumNArgs(1),
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "Config file (YAML); flags override its values")
	rootCmd.Flags().StringVarP(&dbURL, "url", "u", "", "Database URL (postgres://, mysql://, sqlite://, or xml://)")
	rootCmd.Flags().StringVarP(&format, "format", "f", "", "Output format: html, sql, or xml")
	rootCmd.Flags().StringVarP(&outFile, "output", "o", "", "Output file for sql/xml output (default: stdout for sql)")
	rootCmd.Flags().StringVarP(&outDir, "output-dir", "d", "", "Output directory for html output")
	rootCmd.Flags().StringSliceVar(&include, "include", nil, "Schema name patterns to include (shell wildcards)")
	rootCmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Schema name patterns to exclude (shell wildcards)")
	rootCmd.Flags().StringVar(&title, "title", "", "HTML page title (default: database name)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every object as it is built")

	for _, name := range []string{"url", "format", "output", "output-dir", "include", "exclude", "title", "verbose"} {
		if err := viper.BindPFlag(name, rootCmd.Flags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func run(cmd *cobra.Command, args []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	url := viper.GetString("url")
	if url == "" && len(args) == 1 {
		url = args[0]
	}
	if url == "" {
		return fmt.Errorf("a database URL is required (--url or positional argument)")
	}

	var logger *zap.Logger
	if viper.GetBool("verbose") {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()
	}

	opts := &catadoc.Options{
		Include: viper.GetStringSlice("include"),
		Exclude: viper.GetStringSlice("exclude"),
		Logger:  logger,
	}
	outOpts := &catadoc.OutputOptions{
		Format:     viper.GetString("format"),
		OutputDir:  viper.GetString("output-dir"),
		OutputFile: viper.GetString("output"),
		Title:      viper.GetString("title"),
	}

	return catadoc.ExtractAndRender(cmd.Context(), url, opts, outOpts)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
