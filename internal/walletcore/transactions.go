package walletcore

import (
	"context"
	"fmt"

	"github.com/jasony/bitcoinwallet/internal/bitcoin/address"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/bip44"
)

// ownedAddresses collects every address allocated (on either chain) under
// (coinType, account), requiring w.mu already held and a loaded
// hierarchy.
func (w *WalletCore) ownedAddresses(coinType, accountIndex uint32) (map[string]bool, error) {
	ct, ok := w.private.CoinType(coinType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown coin type %d", ErrOther, coinType)
	}
	acc, err := ct.AccountAt(accountIndex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOther, err)
	}
	owned := make(map[string]bool)
	for _, chain := range []*bip44.Chain{acc.External, acc.Internal} {
		for _, idx := range chain.SortedIndices() {
			kp, err := chain.Keypair(idx)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrOther, err)
			}
			owned[kp.Address().String()] = true
		}
	}
	return owned, nil
}

// GetSimpleTransactions fetches every transaction touching any address
// allocated under (coinType, account) across both chains, deduplicates by
// txid, and classifies each as Incoming/Outgoing/Internal by checking
// whether a wallet-owned address appears among the inputs and summing the
// value that crosses the wallet boundary.
func (w *WalletCore) GetSimpleTransactions(ctx context.Context, coinType, accountIndex uint32) ([]SimplifiedTransaction, error) {
	w.mu.Lock()
	if err := w.requireLoaded(); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	owned, err := w.ownedAddresses(coinType, accountIndex)
	if err != nil {
		w.mu.Unlock()
		return nil, err
	}
	var addrs []address.Address
	ct, _ := w.private.CoinType(coinType)
	acc, _ := ct.AccountAt(accountIndex)
	for _, chain := range []*bip44.Chain{acc.External, acc.Internal} {
		for _, idx := range chain.SortedIndices() {
			kp, _ := chain.Keypair(idx)
			addrs = append(addrs, kp.Address())
		}
	}
	w.mu.Unlock()

	seen := make(map[string]bool)
	var out []SimplifiedTransaction
	for _, addr := range addrs {
		txs, err := w.indexer.GetAddressTransactions(ctx, addr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIOError, err)
		}
		for _, tx := range txs {
			if seen[tx.TxID] {
				continue
			}
			seen[tx.TxID] = true
			out = append(out, classify(tx, owned))
		}
	}
	return out, nil
}

func classify(tx Transaction, owned map[string]bool) SimplifiedTransaction {
	ownedInput := false
	for _, in := range tx.Vin {
		if owned[in.Prevout.Address] {
			ownedInput = true
			break
		}
	}

	var crossing uint64
	anyOwnedOutput := false
	for _, out := range tx.Vout {
		if owned[out.Address] {
			anyOwnedOutput = true
			if !ownedInput {
				crossing += out.Value
			}
		} else if ownedInput {
			crossing += out.Value
		}
	}

	direction := DirectionIncoming
	switch {
	case ownedInput && anyOwnedOutput && crossing == 0:
		direction = DirectionInternal
	case ownedInput:
		direction = DirectionOutgoing
	default:
		direction = DirectionIncoming
	}

	return SimplifiedTransaction{
		TxID:      tx.TxID,
		Direction: direction,
		Value:     crossing,
		Fee:       tx.Fee,
		Confirmed: tx.Status.Confirmed,
	}
}

// ValidateAddress parses s as a Base58Check P2PKH address.
func ValidateAddress(s string) (address.Address, error) {
	addr, err := address.Parse(s)
	if err != nil {
		return address.Address{}, fmt.Errorf("%w: %v", ErrWrongAddressType, err)
	}
	return addr, nil
}

// GetRecommendedFees proxies the indexer's fee-estimate endpoint for the
// given coin type.
func (w *WalletCore) GetRecommendedFees(ctx context.Context, coinType uint32) (Fees, error) {
	fees, err := w.indexer.GetRecommendedFees(ctx, coinType)
	if err != nil {
		return Fees{}, fmt.Errorf("%w: %v", ErrIOError, err)
	}
	return fees, nil
}
