package main

import (
	"fmt"
	"log"

	"github.com/jasony/bitcoinwallet/internal/bitcoin/bip32"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/bip39"
)

func main() {
	mnemonic := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

	seed := bip39.Seed([]string{
		"abandon", "abandon", "abandon", "abandon", "abandon", "abandon",
		"abandon", "abandon", "abandon", "abandon", "abandon", "about",
	}, "")

	master, err := bip32.CreateMasterKey(seed, false)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Mnemonic: %s\n", mnemonic)
	fmt.Printf("Master xprv: %s\n", master.ToBase58Check())

	masterPub, err := master.Neuter()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Master xpub: %s\n", masterPub.ToBase58Check())

	purpose, err := master.DeriveChild(bip32.HardenedOffset + 44)
	if err != nil {
		log.Fatal(err)
	}
	coinType, err := purpose.DeriveChild(bip32.HardenedOffset + 0)
	if err != nil {
		log.Fatal(err)
	}
	account, err := coinType.DeriveChild(bip32.HardenedOffset + 0)
	if err != nil {
		log.Fatal(err)
	}
	external, err := account.DeriveChild(0)
	if err != nil {
		log.Fatal(err)
	}
	first, err := external.DeriveChild(0)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("m/44'/0'/0'/0/0 xprv: %s\n", first.ToBase58Check())
}
