package bip44

import "github.com/jasony/bitcoinwallet/internal/bitcoin/bip32"

// PublicChain is the public mirror of a Chain: non-hardened xpubs keyed
// by index.
type PublicChain struct {
	base      *bip32.ExtendedPublicKey
	Keys      map[uint32]*bip32.ExtendedPublicKey
	insertion []uint32 // preserves allocation order for newest-first enumeration
}

func newPublicChain(base *bip32.ExtendedPublicKey) *PublicChain {
	return &PublicChain{base: base, Keys: make(map[uint32]*bip32.ExtendedPublicKey)}
}

func (pc *PublicChain) maxIndex() (uint32, bool) {
	found := false
	var max uint32
	for _, idx := range pc.insertion {
		if !found || idx > max {
			max = idx
			found = true
		}
	}
	return max, found
}

// KeyAt derives (or returns the cached) xpub at index via CKDpub.
func (pc *PublicChain) KeyAt(index uint32) (*bip32.ExtendedPublicKey, error) {
	if k, ok := pc.Keys[index]; ok {
		return k, nil
	}
	child, err := pc.base.DeriveChild(index)
	if err != nil {
		return nil, err
	}
	pc.Keys[index] = child
	pc.insertion = append(pc.insertion, index)
	return child, nil
}

// NewKey independently allocates the next public key on this chain by
// CKDpub alone, without touching any private-tree allocation counter.
//
// This exists for API completeness with the system this hierarchy was
// modeled on, but using it directly risks desynchronizing the public
// tree's allocation counter from the private tree's: gap-limit address
// discovery would then miss funds sent to privately-allocated indices the
// public tree never mirrored. Callers in this wallet always allocate
// through the private hierarchy first (see walletcore) and call
// MirrorKeypair to mirror the result, rather than calling NewKey
// directly.
func (pc *PublicChain) NewKey() (*bip32.ExtendedPublicKey, error) {
	max, found := pc.maxIndex()
	next := uint32(0)
	if found {
		next = max + 1
	}
	return pc.KeyAt(next)
}

// AddressesNewestFirst returns the chain's allocated indices in reverse
// insertion order (most recently allocated first).
func (pc *PublicChain) AddressesNewestFirst() []uint32 {
	out := make([]uint32, len(pc.insertion))
	for i, idx := range pc.insertion {
		out[len(pc.insertion)-1-i] = idx
	}
	return out
}

// PublicAccount mirrors an Account's external/internal chains.
type PublicAccount struct {
	Index    uint32
	External *PublicChain
	Internal *PublicChain
}

// PublicCoinType mirrors a CoinType's accounts.
type PublicCoinType struct {
	Index    uint32
	Testnet  bool
	Accounts map[uint32]*PublicAccount
}

// PublicHierarchy is the structural, private-key-free mirror of a
// PrivateHierarchy.
type PublicHierarchy struct {
	Master    *bip32.ExtendedPublicKey
	CoinTypes map[uint32]*PublicCoinType
}

// CreateFromPrivate builds a full public mirror of h by neutering every
// node currently present in the private tree.
func CreateFromPrivate(h *PrivateHierarchy) (*PublicHierarchy, error) {
	masterPub, err := h.Master.Neuter()
	if err != nil {
		return nil, err
	}
	pub := &PublicHierarchy{Master: masterPub, CoinTypes: make(map[uint32]*PublicCoinType)}
	for idx, ct := range h.CoinTypes {
		pubCT := &PublicCoinType{Index: idx, Testnet: ct.Testnet, Accounts: make(map[uint32]*PublicAccount)}
		for accIdx, acc := range ct.Accounts {
			pubAcc, err := mirrorAccount(acc)
			if err != nil {
				return nil, err
			}
			pubCT.Accounts[accIdx] = pubAcc
		}
		pub.CoinTypes[idx] = pubCT
	}
	return pub, nil
}

func mirrorAccount(acc *Account) (*PublicAccount, error) {
	extPub, err := acc.External.base.Neuter()
	if err != nil {
		return nil, err
	}
	intPub, err := acc.Internal.base.Neuter()
	if err != nil {
		return nil, err
	}
	pubAcc := &PublicAccount{Index: acc.Index, External: newPublicChain(extPub), Internal: newPublicChain(intPub)}
	for _, idx := range acc.External.sortedIndices() {
		if _, err := pubAcc.External.KeyAt(idx); err != nil {
			return nil, err
		}
	}
	for _, idx := range acc.Internal.sortedIndices() {
		if _, err := pubAcc.Internal.KeyAt(idx); err != nil {
			return nil, err
		}
	}
	return pubAcc, nil
}

// AddAccount mirrors one newly-allocated private account into pub,
// keeping the public tree's account set synchronized with the private
// tree's.
func (pub *PublicHierarchy) AddAccount(ct *CoinType, acc *Account) error {
	pubCT, ok := pub.CoinTypes[ct.Index]
	if !ok {
		pubCT = &PublicCoinType{Index: ct.Index, Testnet: ct.Testnet, Accounts: make(map[uint32]*PublicAccount)}
		pub.CoinTypes[ct.Index] = pubCT
	}
	pubAcc, err := mirrorAccount(acc)
	if err != nil {
		return err
	}
	pubCT.Accounts[acc.Index] = pubAcc
	return nil
}

// MirrorKeypair records a single newly-allocated private keypair into the
// matching public chain, the synchronized counterpart to PublicChain's
// independent NewKey.
func (pub *PublicHierarchy) MirrorKeypair(coinType, account uint32, internal bool, index uint32) error {
	pubCT, ok := pub.CoinTypes[coinType]
	if !ok {
		return errUnknownCoinType
	}
	pubAcc, ok := pubCT.Accounts[account]
	if !ok {
		return errUnknownAccount
	}
	chain := pubAcc.External
	if internal {
		chain = pubAcc.Internal
	}
	_, err := chain.KeyAt(index)
	return err
}
