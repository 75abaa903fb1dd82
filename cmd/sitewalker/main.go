package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sitewalker/internal/config"
	"sitewalker/pkg/crawler"
	"sitewalker/pkg/extractor"
	"sitewalker/pkg/fetcher"
	"sitewalker/pkg/reporter"
	"sitewalker/pkg/storage"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "sitewalker",
	Short: "SiteWalker - bounded concurrent website crawler",
	Long: `SiteWalker explores a website by recursively following same-site links
under configurable depth, page-count and concurrency limits, persisting
every fetched page to a local SQLite database.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var crawlCmd = &cobra.Command{
	Use:   "crawl [URL]",
	Short: "Crawl a website starting from URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		baseURL := args[0]

		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if cmd.Flags().Changed("max-depth") {
			cfg.Crawler.MaxDepth, _ = cmd.Flags().GetInt("max-depth")
		}
		if cmd.Flags().Changed("max-pages") {
			cfg.Crawler.MaxPages, _ = cmd.Flags().GetInt("max-pages")
		}
		if cmd.Flags().Changed("workers") {
			cfg.Crawler.Workers, _ = cmd.Flags().GetInt("workers")
		}
		if cmd.Flags().Changed("db") {
			cfg.Storage.Path, _ = cmd.Flags().GetString("db")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		setupLogging(cfg)

		// The sink is shared infrastructure: failing to open it aborts the
		// run before any worker starts.
		store, err := storage.Open(cfg.Storage.Path, storage.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open result store: %w", err)
		}
		defer store.Close()

		c, err := crawler.New(crawler.Options{
			BaseURL:            baseURL,
			MaxDepth:           cfg.Crawler.MaxDepth,
			MaxPages:           cfg.Crawler.MaxPages,
			Workers:            cfg.Crawler.Workers,
			IdleTimeout:        cfg.Crawler.IdleTimeout,
			ExcludedExtensions: cfg.Crawler.ExcludedExtensions,
		}, fetcher.NewHTTP(fetcher.Options{
			Timeout:           cfg.Crawler.Timeout,
			RequestsPerSecond: cfg.Crawler.RequestsPerSecond,
			UserAgent:         cfg.Crawler.UserAgent,
		}), extractor.New(), store)
		if err != nil {
			return fmt.Errorf("failed to create crawler: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		report, err := c.Run(ctx)
		if err != nil {
			return fmt.Errorf("crawl failed: %w", err)
		}

		format, _ := cmd.Flags().GetString("format")
		rendered, err := reporter.Render(report, reporter.Format(format))
		if err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")
		if output != "" {
			if err := os.WriteFile(output, []byte(rendered), 0644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			fmt.Printf("Report saved to %s\n", output)
		} else {
			fmt.Println(rendered)
		}

		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize the results of a previous crawl",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, _ := cmd.Flags().GetString("db")

		store, err := storage.Open(dbPath, storage.Options{CreateIfNotExists: false})
		if err != nil {
			return fmt.Errorf("failed to open result store: %w", err)
		}
		defer store.Close()

		results, err := store.Results(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to read results: %w", err)
		}

		fmt.Printf("%d pages stored in %s\n", len(results), dbPath)
		for _, r := range results {
			title := r.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Printf("  depth=%d  %s  %s\n", r.Depth, r.URL, title)
		}
		return nil
	},
}

func setupLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logging.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}
}

func init() {
	crawlCmd.Flags().Int("max-depth", 3, "Maximum crawl depth")
	crawlCmd.Flags().Int("max-pages", 100, "Maximum number of pages to fetch")
	crawlCmd.Flags().Int("workers", 5, "Number of concurrent workers")
	crawlCmd.Flags().String("db", "./sitewalker.db", "Path to the results database")
	crawlCmd.Flags().String("format", "json", "Report format (json, markdown, text)")
	crawlCmd.Flags().String("output", "", "Write the report to a file instead of stdout")

	reportCmd.Flags().String("db", "./sitewalker.db", "Path to the results database")

	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(reportCmd)

	rootCmd.PersistentFlags().String("config", "", "Config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
