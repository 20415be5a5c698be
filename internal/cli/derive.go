package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// coinTypeForNetwork mirrors the BIP-44 coin-type registry: 0 for Bitcoin
// mainnet, 1 for any testnet.
func coinTypeForNetwork(testnet bool) uint32 {
	if testnet {
		return 1
	}
	return 0
}

var receiveAddressCmd = &cobra.Command{
	Use:   "receive-address",
	Short: "Allocate and print a new receive address for an account",
	Long: `Allocates the next external-chain address under the given account
index in the private hierarchy, mirrors it into the public-only view,
and re-persists the wallet before printing the address.`,
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
		addr, err := facade.GetNewReceiveAddress(coinTypeForNetwork(cfg.Testnet), account)
		if err != nil {
			return err
		}
		fmt.Printf("Account %d receive address:\n%s\n", account, addr)
		return nil
	},
}

var listAddressesCmd = &cobra.Command{
	Use:   "addresses",
	Short: "List every allocated receive address for an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		account, _ := cmd.Flags().GetUint32("account")
		marked, _ := cmd.Flags().GetBool("mark-used")

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

		coinType := coinTypeForNetwork(cfg.Testnet)
		if marked {
			entries, err := facade.GetAllReceiveAddressesMarked(context.Background(), coinType, account)
			if err != nil {
				return err
			}
			for _, e := range entries {
				status := "unused"
				if e.Used {
					status = "used"
				}
				fmt.Printf("%s  %s\n", e.Address, status)
			}
			return nil
		}

		addrs, err := facade.GetAllReceiveAddresses(coinType, account)
		if err != nil {
			return err
		}
		for _, a := range addrs {
			fmt.Println(a)
		}
		return nil
	},
}

func init() {
	receiveAddressCmd.Flags().Uint32P("account", "a", 0, "Account index")
	listAddressesCmd.Flags().Uint32P("account", "a", 0, "Account index")
	listAddressesCmd.Flags().Bool("mark-used", false, "Query the indexer and mark each address used/unused")

	rootCmd.AddCommand(receiveAddressCmd)
	rootCmd.AddCommand(listAddressesCmd)
}
