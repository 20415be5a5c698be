// Package cli wires cobra commands onto the walletcore facade.
package cli

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jasony/bitcoinwallet/internal/config"
	"github.com/jasony/bitcoinwallet/internal/mempool"
	"github.com/jasony/bitcoinwallet/internal/walletcore"
	"github.com/jasony/bitcoinwallet/internal/walletlog"
)

var (
	cfgFile string
	version = "1.0.0"
)

var rootCmd = &cobra.Command{
	Use:   "wallet",
	Short: "A self-custodial legacy Bitcoin UTXO wallet",
	Long: `wallet is a self-custodial, offline-first Bitcoin (mainnet/testnet)
key-management core: from a BIP-39 mnemonic and optional passphrase it
derives a BIP-44 tree of signing keys and P2PKH receive addresses,
persists that tree AES-256-GCM-encrypted at rest, and assembles, signs,
and broadcasts legacy transactions through a mempool.space-shaped
indexer.`,
	Version: version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(func() { config.Init(cfgFile) })

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.bitcoinwallet.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose structured logging")
	rootCmd.PersistentFlags().Bool("testnet", false, "operate against Bitcoin testnet")
	rootCmd.PersistentFlags().String("wallet-path", "", "encrypted wallet file path (default $HOME/.bitcoinwallet)")
	rootCmd.PersistentFlags().String("api-url", "", "override the indexer API base URL")
	rootCmd.PersistentFlags().Uint64("fee-per-byte", 0, "override the fee-per-byte used for offline testing")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("testnet", rootCmd.PersistentFlags().Lookup("testnet"))
	viper.BindPFlag("wallet-path", rootCmd.PersistentFlags().Lookup("wallet-path"))
	viper.BindPFlag("api-url", rootCmd.PersistentFlags().Lookup("api-url"))
	viper.BindPFlag("fee-per-byte", rootCmd.PersistentFlags().Lookup("fee-per-byte"))
}

// buildFacade resolves configuration and assembles a WalletCore wired to
// a mempool.space indexer client and a zerolog logger, the shape every
// command below needs before it can do anything.
func buildFacade() (*walletcore.WalletCore, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := walletlog.New(cfg.Verbose, nil)
	httpClient := &http.Client{Timeout: 30 * time.Second}
	indexer := mempool.New(httpClient, log, cfg.APIBaseURL)
	facade := walletcore.New(cfg.WalletPath, indexer, log)
	return facade, cfg, nil
}
