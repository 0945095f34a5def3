package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zanvidmar/dropquest/internal/api"
	"github.com/zanvidmar/dropquest/internal/config"
	"github.com/zanvidmar/dropquest/internal/portability"
	"github.com/zanvidmar/dropquest/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: dropquest <serve|export|import|summary>")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "export":
		cmdExport(os.Args[2:])
	case "import":
		cmdImport(os.Args[2:])
	case "summary":
		cmdSummary(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\nUsage: dropquest <serve|export|import|summary>\n", os.Args[1])
		os.Exit(1)
	}
}

// openStore is the composition root for persistence: config in, ready
// key/value store out. Everything downstream receives it explicitly.
func openStore(cfg *config.Config) (*storage.Store, func(), error) {
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	if err := storage.EnsureSchema(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("initializing schema: %w", err)
	}
	return storage.New(db, cfg.Origin, cfg.Quota), func() { db.Close() }, nil
}

func loadConfig(fs *flag.FlagSet, args []string) *config.Config {
	configPath := fs.String("config", "config.yml", "path to config file")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	initLogger(cfg.LogLevel)
	return cfg
}

func initLogger(level string) {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	logLevel := zerolog.InfoLevel
	if lvl, err := zerolog.ParseLevel(level); err == nil {
		logLevel = lvl
	}
	zerolog.SetGlobalLevel(logLevel)
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfg := loadConfig(fs, args)

	kv, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("opening store")
	}
	defer closeStore()

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.LoggingMiddleware(api.NewRouter(kv)),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", cfg.Addr).Str("db", cfg.DBPath).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "", "output file (stdout if empty)")
	cfg := loadConfig(fs, args)

	kv, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("opening store")
	}
	defer closeStore()

	archive := portability.Export(context.Background(), kv)

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatal().Err(err).Msg("creating output file")
		}
		defer f.Close()
		w = f
	}
	if err := archive.Write(w); err != nil {
		log.Fatal().Err(err).Msg("writing backup")
	}
}

func cmdImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	in := fs.String("in", "", "backup file to import")
	replace := fs.Bool("replace", false, "overwrite existing data instead of merging")
	cfg := loadConfig(fs, args)

	if *in == "" {
		fmt.Fprintln(os.Stderr, "Error: -in is required")
		os.Exit(1)
	}

	kv, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("opening store")
	}
	defer closeStore()

	f, err := os.Open(*in)
	if err != nil {
		log.Fatal().Err(err).Msg("opening backup file")
	}
	defer f.Close()

	result, err := portability.Import(context.Background(), kv, f, *replace)
	if err != nil {
		log.Fatal().Err(err).Msg("import failed")
	}
	fmt.Printf("Imported %d players and %d items.\n", result.PlayersImported, result.ItemsImported)
}

func cmdSummary(args []string) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	cfg := loadConfig(fs, args)

	kv, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("opening store")
	}
	defer closeStore()

	summary, err := portability.Summarize(context.Background(), kv)
	if err != nil {
		log.Fatal().Err(err).Msg("summarizing data")
	}
	fmt.Printf("Players: %d\nItems:   %d\nSize:    %.1f KB\n",
		summary.Players, summary.Items, float64(summary.SizeBytes)/1024)
}
