package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List every existing account and its balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		facade, cfg, err := buildFacade()
		if err != nil {
			return err
		}
		password, err := readPassword("Wallet decryption password: ")
		if err != nil {
			return err
		}
		if err := facade.LoadMasterKey(password); err != nil {
			return err
		}
		overview, err := facade.GetAccountsOverview(context.Background(), coinTypeForNetwork(cfg.Testnet))
		if err != nil {
			return err
		}
		for _, acc := range overview {
			fmt.Printf("account %d: %d sats\n", acc.Index, acc.Balance)
		}
		return nil
	},
}

var newAccountCmd = &cobra.Command{
	Use:   "new-account",
	Short: "Allocate a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		facade, cfg, err := buildFacade()
		if err != nil {
			return err
		}
		password, err := readPassword("Wallet decryption password: ")
		if err != nil {
			return err
		}
		if err := facade.LoadMasterKey(password); err != nil {
			return err
		}
		acc, err := facade.CreateNewAccount(coinTypeForNetwork(cfg.Testnet))
		if err != nil {
			return err
		}
		fmt.Printf("created account %d\n", acc.Index)
		return nil
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print an account's confirmed+unconfirmed UTXO balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		account, _ := cmd.Flags().GetUint32("account")

		facade, cfg, err := buildFacade()
		if err != nil {
			return err
		}
		password, err := readPassword("Wallet decryption password: ")
		if err != nil {
			return err
		}
		if err := facade.LoadMasterKey(password); err != nil {
			return err
		}
		balance, err := facade.GetAccountBalance(context.Background(), coinTypeForNetwork(cfg.Testnet), account)
		if err != nil {
			return err
		}
		fmt.Printf("account %d balance: %d sats\n", account, balance)
		return nil
	},
}

func init() {
	balanceCmd.Flags().Uint32P("account", "a", 0, "Account index")

	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(newAccountCmd)
	rootCmd.AddCommand(balanceCmd)
}
