package cmd

import (
	"strings"
	"time"

	"lever/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

var addMarketCmd = &cobra.Command{
	Use:     "add-market",
	Aliases: []string{"am"},
	Short:   "add market",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		marketStore := provideMarketStore(database)

		symbol, _ := cmd.Flags().GetString("symbol")
		assetID, _ := cmd.Flags().GetString("asset")
		if symbol == "" || assetID == "" {
			cmd.PrintErrln("both --symbol and --asset are required")
			return
		}

		market := &core.Market{
			AssetID:              assetID,
			Symbol:               strings.ToUpper(symbol),
			BorrowIndex:          decimal.New(1, 0),
			SupplyIndex:          decimal.New(1, 0),
			LastAccruedAt:        time.Now().Unix(),
			ReserveFactor:        flagDecimal(cmd, "reserve-factor"),
			BorrowCap:            flagDecimal(cmd, "borrow-cap"),
			CollateralFactor:     flagDecimal(cmd, "collateral-factor"),
			LiquidationIncentive: flagDecimal(cmd, "liquidation-incentive"),
			CloseFactor:          flagDecimal(cmd, "close-factor"),
			MaxPriceAge:          cast.ToInt64(flagString(cmd, "max-price-age")),
			BaseRate:             flagDecimal(cmd, "base-rate"),
			Multiplier:           flagDecimal(cmd, "multiplier"),
			JumpMultiplier:       flagDecimal(cmd, "jump-multiplier"),
			Kink:                 flagDecimal(cmd, "kink"),
		}

		if err := database.Tx(func(tx *db.DB) error {
			return marketStore.Save(ctx, tx, market)
		}); err != nil {
			cmd.PrintErrln("save market error:", err)
			return
		}

		cmd.Println("market", market.Symbol, "created")
	},
}

var listMarketsCmd = &cobra.Command{
	Use:     "markets",
	Aliases: []string{"lm"},
	Short:   "list markets",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		markets, err := provideMarketStore(database).All(ctx)
		if err != nil {
			cmd.PrintErrln("list markets error:", err)
			return
		}

		for _, m := range markets {
			cmd.Println(m.Symbol, m.AssetID,
				"cash:", m.TotalCash,
				"borrows:", m.TotalBorrows,
				"reserves:", m.Reserves)
		}
	},
}

func flagDecimal(cmd *cobra.Command, name string) decimal.Decimal {
	v, _ := cmd.Flags().GetString(name)
	d, _ := decimal.NewFromString(v)
	return d
}

func flagString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func init() {
	rootCmd.AddCommand(addMarketCmd)
	rootCmd.AddCommand(listMarketsCmd)

	addMarketCmd.Flags().String("symbol", "", "market symbol, e.g. BTC")
	addMarketCmd.Flags().String("asset", "", "underlying asset id")
	addMarketCmd.Flags().String("reserve-factor", "0.1", "reserve factor, (0, 0.5]")
	addMarketCmd.Flags().String("borrow-cap", "0", "borrow cap, 0 means uncapped")
	addMarketCmd.Flags().String("collateral-factor", "0.75", "collateral factor")
	addMarketCmd.Flags().String("liquidation-incentive", "0.1", "liquidation incentive")
	addMarketCmd.Flags().String("close-factor", "0.5", "close factor")
	addMarketCmd.Flags().String("max-price-age", "120", "max oracle reading age in seconds")
	addMarketCmd.Flags().String("base-rate", "0.025", "base borrow rate per year")
	addMarketCmd.Flags().String("multiplier", "0.2", "rate slope below the kink")
	addMarketCmd.Flags().String("jump-multiplier", "1.5", "rate slope above the kink")
	addMarketCmd.Flags().String("kink", "0.8", "utilization kink")
}
