package cmd

import (
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// credits a holder balance directly, the operational entry point for
// funds arriving from outside the ledger
var creditCmd = &cobra.Command{
	Use:   "credit",
	Short: "credit a user wallet balance",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		vaultStore := provideVaultStore(database)

		userID, _ := cmd.Flags().GetString("user")
		assetID, _ := cmd.Flags().GetString("asset")
		amountStr, _ := cmd.Flags().GetString("amount")

		amount, err := decimal.NewFromString(amountStr)
		if err != nil || !amount.IsPositive() {
			cmd.PrintErrln("invalid amount:", amountStr)
			return
		}

		if userID == "" || assetID == "" {
			cmd.PrintErrln("both --user and --asset are required")
			return
		}

		if err := database.Tx(func(tx *db.DB) error {
			return vaultStore.Credit(ctx, tx, userID, assetID, amount)
		}); err != nil {
			cmd.PrintErrln("credit error:", err)
			return
		}

		cmd.Println("credited", amount, assetID, "to", userID)
	},
}

func init() {
	rootCmd.AddCommand(creditCmd)

	creditCmd.Flags().String("user", "", "user id")
	creditCmd.Flags().String("asset", "", "asset id")
	creditCmd.Flags().String("amount", "", "amount to credit")
}
