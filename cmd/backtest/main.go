package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"pivot_bot/internal/helper"
	backtest "pivot_bot/internal/modules/backtest/service"
	"pivot_bot/internal/modules/config"
	instruments "pivot_bot/internal/modules/instruments/service"
	"pivot_bot/internal/modules/strategy"
	upstox "pivot_bot/internal/modules/upstox/service"
	"pivot_bot/internal/notify"
	"pivot_bot/pkg/logger"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run the pivot reversal backtest for one trading day",
	Long: `Runs pivot detection and trade simulation for the given date (DD-MM-YYYY).
Pivots come from the previous trading day. Without --instruments the whole
configured universe is processed in batches.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	f := rootCmd.Flags()
	f.String("config", "configs/values_local.yaml", "path to yaml config")
	f.String("date", "", "trading date DD-MM-YYYY (default: today in market timezone)")
	f.StringSlice("instruments", nil, "instrument keys or trading symbols (default: universe)")
	f.Bool("json", false, "print the report as JSON instead of text")
	f.Bool("notify", false, "publish the report to telegram")
	f.Int("batch-size", 0, "override backtest.batch_size")
	f.Duration("batch-pause", 0, "override backtest.batch_pause")

	_ = v.BindPFlags(f)
	v.SetEnvPrefix("PIVOT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(v.GetString("config"))
	if err != nil {
		return err
	}
	if n := v.GetInt("batch-size"); n > 0 {
		cfg.Backtest.BatchSize = n
	}
	if d := v.GetDuration("batch-pause"); d > 0 {
		cfg.Backtest.BatchPause = d
	}
	if err = logger.Init(cfg.LogLevel); err != nil {
		return err
	}
	defer logger.Sync()
	logger.SetServiceName("pivot_backtest")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc := helper.MarketLocation(cfg.MarketData.Timezone)
	cal := helper.NewCalendar(cfg.Holidays)

	date := v.GetString("date")
	if date == "" {
		date = time.Now().In(loc).Format(helper.RequestDateLayout)
	}
	prev, cur, err := cal.SessionDates(date, loc)
	if err != nil {
		return err
	}

	lookup, err := instruments.LoadFile(cfg.Instrument.File, cfg.Instrument.Segment)
	if err != nil {
		return err
	}
	window, err := strategy.NewWindow(cfg)
	if err != nil {
		return err
	}

	engine := backtest.NewEngine(upstox.NewClient(cfg), lookup, window, strategy.NewRiskManager(cfg))
	universe := cfg.Backtest.Universe
	if len(universe) == 0 {
		universe = instruments.Keys(lookup.All())
	}
	orch := backtest.NewOrchestrator(engine, lookup, backtest.Settings{
		ProviderURL: cfg.MarketData.BaseURL,
		BatchSize:   cfg.Backtest.BatchSize,
		BatchPause:  cfg.Backtest.BatchPause,
		Universe:    universe,
	})

	keys := resolveKeys(lookup, v.GetStringSlice("instruments"))
	report, err := orch.Run(ctx, keys, prev, cur)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if v.GetBool("json") {
		text, err := notify.FormatJSON(report)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, text)
	} else {
		fmt.Fprintln(out, notify.FormatReport(report))
	}

	if v.GetBool("notify") {
		tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, cfg.Backtest.NotifyJSON)
		if err != nil {
			return err
		}
		if err = tg.Publish(ctx, notify.FormatReport(report), report); err != nil {
			return errors.Wrap(err, "publish report")
		}
	}
	return nil
}

func resolveKeys(lookup instruments.Lookup, raw []string) []string {
	keys := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if !strings.Contains(r, "|") {
			if k, ok := lookup.Key(r); ok {
				r = k
			}
		}
		keys = append(keys, r)
	}
	return keys
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
