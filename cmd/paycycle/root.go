package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lachiem1/paycycle/internal/budget"
	"github.com/lachiem1/paycycle/internal/config"
	"github.com/lachiem1/paycycle/internal/dateutil"
	"github.com/lachiem1/paycycle/internal/money"
	"github.com/lachiem1/paycycle/internal/storage"
)

var (
	flagConfig string
	flagDB     string
	flagToday  string
	flagJSON   bool
)

var rootCmd = &cobra.Command{
	Use:           "paycycle",
	Short:         "Pay-cycle budgeting in the terminal",
	Long:          "Track what is left until pay day: a daily budget, a risk level, and savings rolled into history every cycle.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runStatus,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default $XDG_CONFIG_HOME/paycycle/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Database file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagToday, "today", "", "Pretend today is YYYY-MM-DD")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print JSON instead of text")
}

// app is everything a command needs, opened once per invocation.
type app struct {
	cfg       config.Config
	storage   storage.Config
	log       *logrus.Logger
	db        *sql.DB
	svc       *budget.Service
	rollovers *storage.RolloverLogRepo
	money     *money.Formatter
}

func loadConfig() (config.Config, storage.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, storage.Config{}, err
	}
	if flagDB != "" {
		cfg.Storage.Path = flagDB
	}
	sc, err := cfg.StorageConfig()
	if err != nil {
		return cfg, storage.Config{}, err
	}
	return cfg, sc, nil
}

func openApp(ctx context.Context) (*app, error) {
	cfg, sc, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		return nil, err
	}
	formatter, err := money.NewFormatter(cfg.Display.Locale, cfg.Display.Currency)
	if err != nil {
		return nil, err
	}
	clock, err := clockFor(flagToday)
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(ctx, sc)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", sc.Path, err)
	}
	log.WithFields(logrus.Fields{"path": sc.Path, "mode": sc.Mode}).Debug("database opened")

	rollovers := storage.NewRolloverLogRepo(db)
	svc := budget.NewService(
		storage.NewFinanceStateRepo(db),
		log,
		budget.WithClock(clock),
		budget.WithRolloverRecorder(rollovers),
	)
	if err := svc.Load(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &app{
		cfg:       cfg,
		storage:   sc,
		log:       log,
		db:        db,
		svc:       svc,
		rollovers: rollovers,
		money:     formatter,
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// withApp opens the app around fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func newLogger(cfg config.LogConfig, out io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(out)

	level := logrus.WarnLevel
	if raw := strings.TrimSpace(cfg.Level); raw != "" {
		parsed, err := logrus.ParseLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		level = parsed
	}
	log.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	return log, nil
}

// clockFor returns time.Now, or a clock pinned to the given date at the
// current time of day.
func clockFor(today string) (func() time.Time, error) {
	if strings.TrimSpace(today) == "" {
		return time.Now, nil
	}
	day, ok := dateutil.ParseInput(today)
	if !ok {
		return nil, fmt.Errorf("--today: %w: %q", budget.ErrInvalidDate, today)
	}
	return func() time.Time {
		now := time.Now()
		return time.Date(day.Year(), day.Month(), day.Day(), now.Hour(), now.Minute(), now.Second(), 0, time.Local)
	}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseAmountArg(raw string) (float64, error) {
	v, err := money.Parse(raw)
	if err != nil {
		return 0, fmt.Errorf("amount %q: %w", raw, err)
	}
	return v, nil
}
