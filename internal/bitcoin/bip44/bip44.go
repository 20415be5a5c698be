// Package bip44 implements the BIP-44 logical hierarchy on top of bip32's
// extended keys: a private tree with on-demand-allocated accounts/chains/
// keypairs, and a structural public-only mirror.
package bip44

import (
	"sort"

	"github.com/jasony/bitcoinwallet/internal/bitcoin/address"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/bip32"
)

// Coin type registry: index 0 is Bitcoin mainnet, index 1 is Bitcoin
// testnet, per BIP-44's coin_type registry entries for this wallet's
// supported networks.
const (
	BitcoinIndex        uint32 = 0
	BitcoinTestnetIndex uint32 = 1
)

// CoinTypeNames maps a known coin-type index to its display name.
var CoinTypeNames = map[uint32]string{
	BitcoinIndex:        "Bitcoin",
	BitcoinTestnetIndex: "Bitcoin Testnet",
}

// purposeIndex is BIP-44's fixed purpose constant, m/44'.
const purposeIndex = 44

// Keypair is a single (private, public) leaf at m/44'/coin'/account'/change/index.
type Keypair struct {
	PrivateKey *bip32.ExtendedPrivateKey
	PublicKey  *bip32.ExtendedPublicKey
	Index      uint32
}

// Chain holds the auto-allocated keypairs for one of an account's two
// BIP-44 chains (external/receive or internal/change).
type Chain struct {
	base     *bip32.ExtendedPrivateKey
	Keypairs map[uint32]*Keypair
}

func newChain(base *bip32.ExtendedPrivateKey) *Chain {
	return &Chain{base: base, Keypairs: make(map[uint32]*Keypair)}
}

// maxIndex returns the highest allocated index in the chain, and whether
// any index has been allocated at all.
func (c *Chain) maxIndex() (uint32, bool) {
	found := false
	var max uint32
	for idx := range c.Keypairs {
		if !found || idx > max {
			max = idx
			found = true
		}
	}
	return max, found
}

// Keypair returns the keypair at index, deriving and caching it on first
// access.
func (c *Chain) Keypair(index uint32) (*Keypair, error) {
	if kp, ok := c.Keypairs[index]; ok {
		return kp, nil
	}
	priv, err := c.base.DeriveChild(index)
	if err != nil {
		return nil, err
	}
	pub, err := priv.Neuter()
	if err != nil {
		return nil, err
	}
	kp := &Keypair{PrivateKey: priv, PublicKey: pub, Index: index}
	c.Keypairs[index] = kp
	return kp, nil
}

// NewKeypair allocates the next keypair on the chain: index = max+1 (or 0
// if none allocated). An explicit index is requested via Keypair.
func (c *Chain) NewKeypair() (*Keypair, error) {
	max, found := c.maxIndex()
	next := uint32(0)
	if found {
		next = max + 1
	}
	return c.Keypair(next)
}

// sortedIndices returns the chain's allocated indices in ascending order.
func (c *Chain) sortedIndices() []uint32 {
	indices := make([]uint32, 0, len(c.Keypairs))
	for idx := range c.Keypairs {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	return indices
}

// Account holds one BIP-44 account's external (receive) and internal
// (change) chains.
type Account struct {
	Index    uint32
	External *Chain
	Internal *Chain
}

// CoinType holds the accounts allocated under one coin type.
type CoinType struct {
	Index    uint32
	Testnet  bool
	base     *bip32.ExtendedPrivateKey
	Accounts map[uint32]*Account
}

func (ct *CoinType) maxAccountIndex() (uint32, bool) {
	found := false
	var max uint32
	for idx := range ct.Accounts {
		if !found || idx > max {
			max = idx
			found = true
		}
	}
	return max, found
}

// AccountAt derives (if absent) and returns the account at index,
// eagerly deriving its external (child 0) and internal (child 1) chains,
// per BIP-44.
func (ct *CoinType) AccountAt(index uint32) (*Account, error) {
	if acc, ok := ct.Accounts[index]; ok {
		return acc, nil
	}
	accountKey, err := ct.base.DeriveChild(bip32.HardenedOffset + index)
	if err != nil {
		return nil, err
	}
	externalBase, err := accountKey.DeriveChild(0)
	if err != nil {
		return nil, err
	}
	internalBase, err := accountKey.DeriveChild(1)
	if err != nil {
		return nil, err
	}
	acc := &Account{
		Index:    index,
		External: newChain(externalBase),
		Internal: newChain(internalBase),
	}
	ct.Accounts[index] = acc
	return acc, nil
}

// NewAccount allocates the next account: index = max+1, or 0 if none
// exist yet.
func (ct *CoinType) NewAccount() (*Account, error) {
	max, found := ct.maxAccountIndex()
	next := uint32(0)
	if found {
		next = max + 1
	}
	return ct.AccountAt(next)
}

// PrivateHierarchy is the full owning BIP-44 tree rooted at a master key.
type PrivateHierarchy struct {
	Master    *bip32.ExtendedPrivateKey
	Purpose   *bip32.ExtendedPrivateKey
	CoinTypes map[uint32]*CoinType
}

// CreateFromSeed builds the private hierarchy from a 64-byte BIP-39 seed:
// master, then hardened m/44', then a hardened coin-type node for every
// entry in CoinTypeNames.
func CreateFromSeed(seed [64]byte) (*PrivateHierarchy, error) {
	master, err := bip32.CreateMasterKey(seed, false)
	if err != nil {
		return nil, err
	}
	purpose, err := master.DeriveChild(bip32.HardenedOffset + purposeIndex)
	if err != nil {
		return nil, err
	}
	h := &PrivateHierarchy{Master: master, Purpose: purpose, CoinTypes: make(map[uint32]*CoinType)}
	for idx := range CoinTypeNames {
		coinKey, err := purpose.DeriveChild(bip32.HardenedOffset + idx)
		if err != nil {
			return nil, err
		}
		coinKey.Testnet = idx == BitcoinTestnetIndex
		h.CoinTypes[idx] = &CoinType{
			Index:    idx,
			Testnet:  idx == BitcoinTestnetIndex,
			base:     coinKey,
			Accounts: make(map[uint32]*Account),
		}
	}
	return h, nil
}

// CoinType returns the coin-type node for index, which must already exist
// (CreateFromSeed eagerly derives every registered coin type).
func (h *PrivateHierarchy) CoinType(index uint32) (*CoinType, bool) {
	ct, ok := h.CoinTypes[index]
	return ct, ok
}

// GetPrivateKey derives (on demand, with caching) the private key at
// (coinType, account, internal, index).
func (h *PrivateHierarchy) GetPrivateKey(coinType, account uint32, internal bool, index uint32) (*Keypair, error) {
	ct, ok := h.CoinType(coinType)
	if !ok {
		return nil, errUnknownCoinType
	}
	acc, err := ct.AccountAt(account)
	if err != nil {
		return nil, err
	}
	chain := acc.External
	if internal {
		chain = acc.Internal
	}
	return chain.Keypair(index)
}

// Address returns the address owned by a keypair.
func (kp *Keypair) Address() address.Address {
	return address.Create(kp.PublicKey)
}
