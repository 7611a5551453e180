package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"twse-announcements/internal/bootstrap"
	"twse-announcements/internal/config"
	"twse-announcements/internal/dedup"
	"twse-announcements/internal/export"
	"twse-announcements/internal/service"
	"twse-announcements/pkg/calendar"
	"twse-announcements/pkg/logger"
	"twse-announcements/pkg/utils"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const backfillParallelism = 3

type options struct {
	configPath    string
	date          string
	endDate       string
	company       string
	format        string
	output        string
	saveDB        bool
	duplicateMode string
}

var opts options

var rootCmd = &cobra.Command{
	Use:   "twse-announcements",
	Short: "Fetch TWSE material-information announcements for a day",
	Long: `Fetches the exchange's material-information listing for one day (or a range
of days), extracts every announcement and exports it as a table, text, JSON or
the raw HTML. With --save-db the records are also stored under the chosen
duplicate mode.`,
	SilenceUsage: true,
	RunE:         run,
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	days, err := queryDays(opts.date, opts.endDate)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	modeName := cfg.Scraper.DuplicateMode
	if cmd.Flags().Changed("duplicate-mode") {
		modeName = opts.duplicateMode
	}
	mode, err := dedup.ParseMode(modeName)
	if err != nil {
		return err
	}
	company := cfg.Scraper.Company
	if cmd.Flags().Changed("company") {
		company = opts.company
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = appLogger.Sync() }()
	utils.SetPanicLogger(appLogger)

	scrapes := bootstrap.NewExtractOnly(cfg, appLogger)
	if opts.saveDB {
		storage, err := bootstrap.OpenStorage(ctx, cfg, appLogger)
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		defer func() { _ = storage.Close() }()
		scrapes = bootstrap.NewServices(cfg, storage, appLogger).Scrapes
	}

	outputDir := cfg.Scraper.OutputDir
	var stdout sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(backfillParallelism)
	for _, day := range days {
		day := day
		g.Go(func() error {
			var buf bytes.Buffer
			err := scrapeDay(gctx, scrapes, appLogger, export.NewExporter(outputDir, &buf, appLogger), day, format, mode, company)

			stdout.Lock()
			_, _ = io.Copy(os.Stdout, &buf)
			stdout.Unlock()
			return err
		})
	}
	return g.Wait()
}

func scrapeDay(ctx context.Context, scrapes service.ScrapeService, log *logger.Logger, exporter *export.Exporter, day calendar.Date, format export.Format, mode dedup.Mode, company string) error {
	date := day.ISO()
	log.Info("Querying announcements", logger.StringField("date", date), logger.StringField("company", company))

	var ext *service.Extraction
	if opts.saveDB {
		result, err := scrapes.Scrape(ctx, service.ScrapeRequest{Date: date, Mode: mode, Company: company})
		if err != nil {
			return err
		}
		ext = result.Extraction
		if result.Write != nil {
			log.Info("Saved announcements",
				logger.StringField("date", date),
				logger.IntField("inserted", result.Write.Inserted),
				logger.IntField("updated", result.Write.Updated),
				logger.IntField("skipped", result.Write.Skipped),
				logger.IntField("deleted", result.Write.Deleted))
		}
	} else {
		var err error
		ext, err = scrapes.Extract(ctx, date, company)
		if err != nil {
			return err
		}
	}

	written, err := exporter.Export(format, export.BaseName(opts.output, day), ext.Document, ext.Announcements)
	if err != nil {
		return err
	}
	log.Info("Query finished",
		logger.StringField("date", date),
		logger.IntField("announcements", len(ext.Announcements)),
		logger.Field("files", written))
	return nil
}

// queryDays expands the --date/--end-date pair into the days to scrape.
func queryDays(date, endDate string) ([]calendar.Date, error) {
	if date == "" {
		date = utils.TodayTaipei().Format("2006-01-02")
	}
	start, ok := calendar.ParseISO(date)
	if !ok {
		return nil, fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", date)
	}
	if endDate == "" {
		return []calendar.Date{start}, nil
	}
	end, ok := calendar.ParseISO(endDate)
	if !ok {
		return nil, fmt.Errorf("invalid --end-date %q, expected YYYY-MM-DD", endDate)
	}
	return calendar.Days(start, end)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")
	flags.StringVarP(&opts.date, "date", "d", "", "Query date (YYYY-MM-DD), defaults to today in Asia/Taipei")
	flags.StringVar(&opts.endDate, "end-date", "", "Last query date (YYYY-MM-DD) for a multi-day run")
	flags.StringVarP(&opts.company, "company", "C", "", "Only keep companies whose code contains this value")
	flags.StringVarP(&opts.format, "format", "f", string(export.FormatTable), "Output format: json, table, html, txt")
	flags.StringVarP(&opts.output, "output", "o", "twse_announcements", "Output filename prefix")
	flags.BoolVar(&opts.saveDB, "save-db", false, "Store the announcements in the configured database")
	flags.StringVar(&opts.duplicateMode, "duplicate-mode", string(dedup.ModeUpsert), "Duplicate handling: upsert, replace, skip")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing twse-announcements CLI: %s\n", err)
		os.Exit(1)
	}
}
