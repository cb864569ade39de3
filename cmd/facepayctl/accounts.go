package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/your-org/facepay/internal/wallet"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List enrolled accounts and balances",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := needDB(cmd.Context())
		if err != nil {
			return err
		}
		refs, err := wallet.NewService(store).Accounts(cmd.Context())
		if err != nil {
			return err
		}
		if len(refs) == 0 {
			fmt.Println("No accounts found in database.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "NAME\tCID\tPHONE\tBALANCE")
		fmt.Fprintln(w, "----\t---\t-----\t-------")
		for _, r := range refs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\n", r.Name, r.CID, r.Phone, r.Balance)
		}
		return w.Flush()
	},
}

var (
	topupPhone  string
	topupAmount float64
)

var topupCmd = &cobra.Command{
	Use:   "topup",
	Short: "Credit funds to the account registered for a phone number",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := needDB(cmd.Context())
		if err != nil {
			return err
		}
		balance, err := wallet.NewService(store).AddFunds(cmd.Context(), topupPhone, topupAmount)
		if err != nil {
			return err
		}
		fmt.Printf("New balance for %s: %.2f\n", topupPhone, balance)
		return nil
	},
}

func init() {
	topupCmd.Flags().StringVar(&topupPhone, "phone", "", "phone number of the account")
	topupCmd.Flags().Float64Var(&topupAmount, "amount", 0, "amount to credit")
	_ = topupCmd.MarkFlagRequired("phone")
	_ = topupCmd.MarkFlagRequired("amount")

	rootCmd.AddCommand(accountsCmd, topupCmd)
}
