package bip44

import "github.com/jasony/bitcoinwallet/internal/bitcoin/bip32"

// Base returns the chain's own base extended key, the node CKDpriv
// children are derived from. Exposed so walletstore can serialize it
// without re-deriving from the seed.
func (c *Chain) Base() *bip32.ExtendedPrivateKey { return c.base }

// SortedIndices returns the chain's allocated indices in ascending order.
func (c *Chain) SortedIndices() []uint32 { return c.sortedIndices() }

// Base returns the coin type's own base extended key.
func (ct *CoinType) Base() *bip32.ExtendedPrivateKey { return ct.base }

// NewPrivateHierarchy builds a PrivateHierarchy from an already-derived
// master and purpose key, for walletstore to repopulate on load without
// re-deriving from a seed.
func NewPrivateHierarchy(master, purpose *bip32.ExtendedPrivateKey) *PrivateHierarchy {
	return &PrivateHierarchy{Master: master, Purpose: purpose, CoinTypes: make(map[uint32]*CoinType)}
}

// AddCoinType registers a coin-type node built from an already-derived
// base key, for walletstore to repopulate on load.
func (h *PrivateHierarchy) AddCoinType(index uint32, testnet bool, base *bip32.ExtendedPrivateKey) *CoinType {
	ct := &CoinType{Index: index, Testnet: testnet, base: base, Accounts: make(map[uint32]*Account)}
	h.CoinTypes[index] = ct
	return ct
}

// RestoreAccount rebuilds an account from already-derived chain base keys
// and their already-derived keypair maps, for walletstore to repopulate
// on load without re-deriving anything from the seed.
func (ct *CoinType) RestoreAccount(index uint32, extBase *bip32.ExtendedPrivateKey, extKeys map[uint32]*bip32.ExtendedPrivateKey, intBase *bip32.ExtendedPrivateKey, intKeys map[uint32]*bip32.ExtendedPrivateKey) error {
	external := newChain(extBase)
	if err := restoreKeypairs(external, extKeys); err != nil {
		return err
	}
	internal := newChain(intBase)
	if err := restoreKeypairs(internal, intKeys); err != nil {
		return err
	}
	ct.Accounts[index] = &Account{Index: index, External: external, Internal: internal}
	return nil
}

func restoreKeypairs(c *Chain, keys map[uint32]*bip32.ExtendedPrivateKey) error {
	for idx, priv := range keys {
		pub, err := priv.Neuter()
		if err != nil {
			return err
		}
		c.Keypairs[idx] = &Keypair{PrivateKey: priv, PublicKey: pub, Index: idx}
	}
	return nil
}
