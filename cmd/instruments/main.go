package main

import (
	"context"
	"fmt"
	"os"

	instruments "pivot_bot/internal/modules/instruments/service"
	"pivot_bot/pkg/db"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:          "instruments",
	Short:        "Maintain the instrument reference (symbol <-> instrument key)",
	SilenceUsage: true,
}

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Keep one segment of the provider instrument dump and write it as pretty JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		list, err := instruments.ReadFile(v.GetString("in"))
		if err != nil {
			return err
		}
		kept := instruments.FilterSegment(list, v.GetString("segment"))
		if err = instruments.WriteFile(v.GetString("out"), kept); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d instruments written to %s\n", len(kept), len(list), v.GetString("out"))
		return nil
	},
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Upsert the instrument file into postgres table instruments",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dsn := v.GetString("dsn")
		if dsn == "" {
			return errors.New("--dsn or DATABASE_DSN is required")
		}
		list, err := instruments.ReadFile(v.GetString("file"))
		if err != nil {
			return err
		}
		list = instruments.FilterSegment(list, v.GetString("segment"))

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		pool, err := db.NewPool(ctx, db.PoolConfig{DSN: dsn})
		if err != nil {
			return errors.Wrap(err, "connect postgres")
		}
		tx := db.NewPgTxManager(pool)
		defer tx.Close()

		n, err := instruments.NewStore(tx).Upsert(ctx, list)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d instruments upserted\n", n)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("segment", "NSE_EQ", "segment to keep (empty = all)")

	ff := filterCmd.Flags()
	ff.String("in", "NSE.json", "provider instrument dump")
	ff.String("out", "configs/NSE_EQ.json", "output file")

	lf := loadCmd.Flags()
	lf.String("file", "configs/NSE_EQ.json", "instrument file to load")
	lf.String("dsn", "", "postgres DSN")

	_ = v.BindPFlags(pf)
	_ = v.BindPFlags(ff)
	_ = v.BindPFlags(lf)
	_ = v.BindEnv("dsn", "DATABASE_DSN")

	rootCmd.AddCommand(filterCmd, loadCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
