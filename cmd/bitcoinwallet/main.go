// Command bitcoinwallet is the CLI entrypoint for the self-custodial
// Bitcoin wallet core: mnemonic generation, BIP-44 key derivation,
// encrypted persistence, and legacy P2PKH transaction assembly and
// broadcast, fronted by cobra subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/jasony/bitcoinwallet/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
