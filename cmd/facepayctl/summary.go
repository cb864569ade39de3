package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/your-org/facepay/internal/wallet"
)

var (
	summaryUser  string
	historyLimit int
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show transaction totals overall or for one user",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := needDB(cmd.Context())
		if err != nil {
			return err
		}
		sum, err := wallet.NewService(store).Summary(cmd.Context(), summaryUser)
		if err != nil {
			return err
		}

		scope := "all users"
		if summaryUser != "" {
			scope = summaryUser
		}
		fmt.Printf("Transactions for %s\n", scope)
		fmt.Printf("  total:      %d\n", sum.TotalTransactions)
		fmt.Printf("  successful: %d\n", sum.SuccessfulTransactions)
		fmt.Printf("  failed:     %d\n", sum.FailedTransactions)
		fmt.Printf("  amount:     %.2f\n", sum.TotalAmount)
		if sum.UniqueUserCount != nil {
			fmt.Printf("  users:      %d\n", *sum.UniqueUserCount)
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <user-id>",
	Short: "List recent transactions of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := needDB(cmd.Context())
		if err != nil {
			return err
		}
		txns, err := wallet.NewService(store).History(cmd.Context(), args[0], "", historyLimit)
		if err != nil {
			return err
		}
		if len(txns) == 0 {
			fmt.Println("No transactions found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "REFERENCE\tSTATUS\tAMOUNT\tITEMS\tTIME")
		fmt.Fprintln(w, "---------\t------\t------\t-----\t----")
		for _, t := range txns {
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\t%s\n", t.TransactionID, t.PaymentStatus, t.Amount,
				t.OrderSummary.ItemCount, t.Timestamp.Local().Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

func init() {
	summaryCmd.Flags().StringVar(&summaryUser, "user", "", "restrict to one user id")
	historyCmd.Flags().IntVar(&historyLimit, "limit", wallet.DefaultHistoryLimit, "maximum number of transactions")
	rootCmd.AddCommand(summaryCmd, historyCmd)
}
