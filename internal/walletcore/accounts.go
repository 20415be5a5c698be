package walletcore

import (
	"context"
	"fmt"

	"github.com/jasony/bitcoinwallet/internal/bitcoin/address"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/bip44"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/walletstore"
)

// GetAccountsOverview returns every existing account's index and balance
// for the given coin type.
func (w *WalletCore) GetAccountsOverview(ctx context.Context, coinType uint32) ([]AccountOverview, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireLoaded(); err != nil {
		return nil, err
	}
	ct, ok := w.private.CoinType(coinType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown coin type %d", ErrOther, coinType)
	}
	overview := make([]AccountOverview, 0, len(ct.Accounts))
	for _, acc := range ct.Accounts {
		balance, err := w.accountBalance(ctx, acc)
		if err != nil {
			return nil, err
		}
		overview = append(overview, AccountOverview{Index: acc.Index, Balance: balance})
	}
	return overview, nil
}

// CreateNewAccount allocates the next account under coinType in the
// private hierarchy, mirrors it into the public hierarchy, re-persists,
// and returns its overview.
func (w *WalletCore) CreateNewAccount(coinType uint32) (*AccountOverview, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireLoaded(); err != nil {
		return nil, err
	}
	ct, ok := w.private.CoinType(coinType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown coin type %d", ErrOther, coinType)
	}
	acc, err := ct.NewAccount()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOther, err)
	}
	if err := w.public.AddAccount(ct, acc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOther, err)
	}
	if err := w.persistLocked(); err != nil {
		return nil, err
	}
	return &AccountOverview{Index: acc.Index, Balance: 0}, nil
}

// GetNewReceiveAddress allocates the next external (receive) keypair for
// (coinType, account) in the private hierarchy first, mirrors it into the
// public hierarchy, re-persists, and returns the resulting address.
//
// Allocation always flows private-tree-first: the public tree's own
// independent allocation path (PublicChain.NewKey) is never called here,
// to keep the two trees' counters from drifting apart.
func (w *WalletCore) GetNewReceiveAddress(coinType, accountIndex uint32) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireLoaded(); err != nil {
		return "", err
	}
	ct, ok := w.private.CoinType(coinType)
	if !ok {
		return "", fmt.Errorf("%w: unknown coin type %d", ErrOther, coinType)
	}
	acc, err := ct.AccountAt(accountIndex)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOther, err)
	}
	kp, err := acc.External.NewKeypair()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOther, err)
	}
	if err := w.public.MirrorKeypair(coinType, accountIndex, false, kp.Index); err != nil {
		return "", fmt.Errorf("%w: %v", ErrOther, err)
	}
	if err := w.persistLocked(); err != nil {
		return "", err
	}
	return kp.Address().String(), nil
}

// GetAllReceiveAddresses returns every allocated receive address for
// (coinType, account), newest-allocated first.
func (w *WalletCore) GetAllReceiveAddresses(coinType, accountIndex uint32) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	chain, err := w.publicExternalChain(coinType, accountIndex)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, idx := range chain.AddressesNewestFirst() {
		pub, err := chain.KeyAt(idx)
		if err != nil {
			return nil, err
		}
		out = append(out, address.Create(pub).String())
	}
	return out, nil
}

// GetAllReceiveAddressesMarked is GetAllReceiveAddresses paired with
// whether the indexer has ever observed a transaction touching each
// address.
func (w *WalletCore) GetAllReceiveAddressesMarked(ctx context.Context, coinType, accountIndex uint32) ([]SimpleAddress, error) {
	w.mu.Lock()
	chain, err := w.publicExternalChain(coinType, accountIndex)
	w.mu.Unlock()
	if err != nil {
		return nil, err
	}
	var out []SimpleAddress
	for _, idx := range chain.AddressesNewestFirst() {
		pub, err := chain.KeyAt(idx)
		if err != nil {
			return nil, err
		}
		addr := address.Create(pub)
		txs, err := w.indexer.GetAddressTransactions(ctx, addr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIOError, err)
		}
		out = append(out, SimpleAddress{Address: addr.String(), Used: len(txs) > 0})
	}
	return out, nil
}

// GetAccountBalance sums the value of every UTXO owned by any address
// (external or internal chain) allocated under (coinType, account).
func (w *WalletCore) GetAccountBalance(ctx context.Context, coinType, accountIndex uint32) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireLoaded(); err != nil {
		return 0, err
	}
	ct, ok := w.private.CoinType(coinType)
	if !ok {
		return 0, fmt.Errorf("%w: unknown coin type %d", ErrOther, coinType)
	}
	acc, err := ct.AccountAt(accountIndex)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrOther, err)
	}
	return w.accountBalance(ctx, acc)
}

// accountBalance is GetAccountBalance's body, callable while w.mu is
// already held.
func (w *WalletCore) accountBalance(ctx context.Context, acc *bip44.Account) (uint64, error) {
	var total uint64
	for _, chain := range []*bip44.Chain{acc.External, acc.Internal} {
		for _, idx := range chain.SortedIndices() {
			kp, err := chain.Keypair(idx)
			if err != nil {
				return 0, fmt.Errorf("%w: %v", ErrOther, err)
			}
			utxos, err := w.indexer.GetAddressUTXOs(ctx, kp.Address())
			if err != nil {
				return 0, fmt.Errorf("%w: %v", ErrIOError, err)
			}
			for _, u := range utxos {
				total += u.Value
			}
		}
	}
	return total, nil
}

// publicExternalChain resolves the public external chain for
// (coinType, account), requiring a loaded hierarchy.
func (w *WalletCore) publicExternalChain(coinType, accountIndex uint32) (*bip44.PublicChain, error) {
	if err := w.requireLoaded(); err != nil {
		return nil, err
	}
	pubCT, ok := w.public.CoinTypes[coinType]
	if !ok {
		return nil, fmt.Errorf("%w: unknown coin type %d", ErrOther, coinType)
	}
	pubAcc, ok := pubCT.Accounts[accountIndex]
	if !ok {
		return nil, fmt.Errorf("%w: unknown account %d", ErrOther, accountIndex)
	}
	return pubAcc.External, nil
}

// persistLocked re-serializes and re-encrypts the private hierarchy to
// the configured path. Callers must hold w.mu. The password used for
// this session's most recent successful Create/LoadMasterKey call is
// cached in the session map so mutating operations can re-persist without
// prompting again.
func (w *WalletCore) persistLocked() error {
	password, ok := w.session[sessionKeyActivePassword]
	if !ok {
		return nil
	}
	if err := walletstore.Save(w.walletPath, password, w.private); err != nil {
		return fmt.Errorf("%w: %v", ErrIOError, err)
	}
	return nil
}
