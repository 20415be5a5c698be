package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jasony/bitcoinwallet/internal/walletcore"
)

var transactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "List an account's transaction history",
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
		txs, err := facade.GetSimpleTransactions(context.Background(), coinTypeForNetwork(cfg.Testnet), account)
		if err != nil {
			return err
		}
		for _, tx := range txs {
			conf := "unconfirmed"
			if tx.Confirmed {
				conf = "confirmed"
			}
			fmt.Printf("%s  %-9s  %10d sats  fee %8d sats  %s\n", tx.TxID, tx.Direction, tx.Value, tx.Fee, conf)
		}
		return nil
	},
}

var validateAddressCmd = &cobra.Command{
	Use:   "validate-address [address]",
	Short: "Validate a Base58Check P2PKH address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := walletcore.ValidateAddress(args[0])
		if err != nil {
			return err
		}
		network := "mainnet"
		if addr.Testnet {
			network = "testnet"
		}
		fmt.Printf("valid P2PKH address (%s)\n", network)
		return nil
	},
}

var feesCmd = &cobra.Command{
	Use:   "fees",
	Short: "Print the indexer's recommended fee schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		facade, cfg, err := buildFacade()
		if err != nil {
			return err
		}
		fees, err := facade.GetRecommendedFees(context.Background(), coinTypeForNetwork(cfg.Testnet))
		if err != nil {
			return err
		}
		fmt.Printf("fastest:    %d sat/vB\n", fees.FastestFee)
		fmt.Printf("half hour:  %d sat/vB\n", fees.HalfHourFee)
		fmt.Printf("hour:       %d sat/vB\n", fees.HourFee)
		fmt.Printf("economy:    %d sat/vB\n", fees.EconomyFee)
		fmt.Printf("minimum:    %d sat/vB\n", fees.MinimumFee)
		return nil
	},
}

func init() {
	transactionsCmd.Flags().Uint32P("account", "a", 0, "Account index")

	rootCmd.AddCommand(transactionsCmd)
	rootCmd.AddCommand(validateAddressCmd)
	rootCmd.AddCommand(feesCmd)
}
