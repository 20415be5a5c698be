package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate-mnemonic",
	Short: "Generate a new BIP-39 mnemonic phrase",
	Long: `Generate a new cryptographically secure mnemonic phrase that can be
used to create a hierarchical deterministic Bitcoin wallet.

The mnemonic follows BIP-39 and is staged in the running process until
create-master-key is called; it is never written to disk by this
command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bits, _ := cmd.Flags().GetInt("bits")

		facade, _, err := buildFacade()
		if err != nil {
			return err
		}
		words, err := facade.GenerateMnemonic(bits)
		if err != nil {
			return err
		}

		fmt.Printf("Generated mnemonic phrase:\n%s\n", strings.Join(words, " "))
		fmt.Printf("\nEntropy: %d bits\n", bits)
		fmt.Printf("Words: %d\n", len(words))
		fmt.Printf("\nSECURITY WARNING:\n")
		fmt.Printf("Store this mnemonic phrase safely and securely.\n")
		fmt.Printf("Anyone with access to this phrase can control your wallet.\n")
		fmt.Printf("\nTo finish creating a wallet, run 'create-master-key' in the\n")
		fmt.Printf("same process, or re-enter this mnemonic through an equivalent flow.\n")

		return nil
	},
}

var createMasterKeyCmd = &cobra.Command{
	Use:   "create-master-key",
	Short: "Derive and persist a new encrypted wallet from the staged mnemonic",
	Long: `Requires generate-mnemonic to have run earlier in this same process.
Derives the BIP-44 private hierarchy from the staged mnemonic and an
optional passphrase, then encrypts and writes it to the configured
wallet path.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		facade, cfg, err := buildFacade()
		if err != nil {
			return err
		}
		passphrase, _ := cmd.Flags().GetString("passphrase")
		if passphrase != "" {
			if err := facade.SendPassphrase(passphrase); err != nil {
				return err
			}
		}
		password, err := readPassword("Wallet encryption password: ")
		if err != nil {
			return err
		}
		if err := facade.CreateMasterKey(password); err != nil {
			return err
		}
		fmt.Printf("Wallet created at %s\n", cfg.WalletPath)
		return nil
	},
}

var loadMasterKeyCmd = &cobra.Command{
	Use:   "load-master-key",
	Short: "Decrypt the configured wallet file into the running process",
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
		fmt.Printf("Wallet loaded from %s\n", cfg.WalletPath)
		return nil
	},
}

// readPassword prompts on stdout and reads a line of freeform input from
// stdin.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("no password provided")
	}
	return scanner.Text(), nil
}

func init() {
	generateCmd.Flags().IntP("bits", "b", 256, "Entropy bits (128, 160, 192, 224, or 256)")
	createMasterKeyCmd.Flags().StringP("passphrase", "P", "", "Optional BIP-39 passphrase")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(createMasterKeyCmd)
	rootCmd.AddCommand(loadMasterKeyCmd)
}
