package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send [to-address] [amount-sats]",
	Short: "Select coins, build, sign, and broadcast a transaction",
	Long: `Selects UTXOs owned by the given account to cover amount-sats plus
fee, builds and signs a legacy P2PKH transaction, and broadcasts it
through the configured indexer. A change output is allocated on the
account's internal chain automatically when change is owed.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		account, _ := cmd.Flags().GetUint32("account")
		randomImprove, _ := cmd.Flags().GetBool("random-improve")

		toAddress := args[0]
		var amount uint64
		if _, err := fmt.Sscanf(args[1], "%d", &amount); err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[1], err)
		}

		facade, cfg, err := buildFacade()
		if err != nil {
			return err
		}

		feePerByte := cfg.FeePerByte
		if flagFee, _ := cmd.Flags().GetUint64("fee-per-byte"); flagFee != 0 {
			feePerByte = flagFee
		}

		password, err := readPassword("Wallet decryption password: ")
		if err != nil {
			return err
		}
		if err := facade.LoadMasterKey(password); err != nil {
			return err
		}

		rawTx, err := facade.SendTransaction(context.Background(), coinTypeForNetwork(cfg.Testnet), account, toAddress, amount, feePerByte, randomImprove)
		if err != nil {
			return err
		}
		fmt.Printf("broadcast transaction (raw hex):\n%s\n", rawTx)
		return nil
	},
}

func init() {
	sendCmd.Flags().Uint32P("account", "a", 0, "Account index to spend from")
	sendCmd.Flags().Uint64("fee-per-byte", 0, "Fee rate in sat/vB (overrides the configured default)")
	sendCmd.Flags().Bool("random-improve", false, "Use CIP-2 Random-Improve selection instead of Largest-First")

	rootCmd.AddCommand(sendCmd)
}
