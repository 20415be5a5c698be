package walletcore

import (
	"context"
	"fmt"

	"github.com/jasony/bitcoinwallet/internal/bitcoin/address"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/bip44"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/codec"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/coinselect"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/script"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/transaction"
)

// spendableUTXO ties a raw coinselect.UTXO back to the owning keypair and
// outpoint needed to build a BoxedUTXOInput once it is selected.
type spendableUTXO struct {
	coinselect.UTXO
	txid    string
	vout    uint32
	keypair *bip44.Keypair
}

func utxoID(txid string, vout uint32) string { return fmt.Sprintf("%s:%d", txid, vout) }

// collectSpendable fetches every UTXO owned by (coinType, account) across
// both chains, from the indexer.
func (w *WalletCore) collectSpendable(ctx context.Context, acc *bip44.Account) ([]spendableUTXO, error) {
	var out []spendableUTXO
	for _, chain := range []*bip44.Chain{acc.External, acc.Internal} {
		for _, idx := range chain.SortedIndices() {
			kp, err := chain.Keypair(idx)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrOther, err)
			}
			utxos, err := w.indexer.GetAddressUTXOs(ctx, kp.Address())
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrIOError, err)
			}
			for _, u := range utxos {
				out = append(out, spendableUTXO{
					UTXO:    coinselect.UTXO{ID: utxoID(u.TxID, u.Vout), Value: u.Value},
					txid:    u.TxID,
					vout:    u.Vout,
					keypair: kp,
				})
			}
		}
	}
	return out, nil
}

// SendTransaction selects coins under (coinType, account) to cover
// amount to toAddress at feePerByte, allocates a change address on this
// wallet's internal chain when change is owed, signs and broadcasts the
// result, and — only once the broadcast succeeds — persists the updated
// private hierarchy. A cancelled or failed broadcast leaves the wallet
// file untouched.
func (w *WalletCore) SendTransaction(ctx context.Context, coinType, accountIndex uint32, toAddress string, amount, feePerByte uint64, useRandomImprove bool) (string, error) {
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
	destAddr, err := address.Parse(toAddress)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWrongAddressType, err)
	}

	spendable, err := w.collectSpendable(ctx, acc)
	if err != nil {
		return "", err
	}
	pool := make([]coinselect.UTXO, len(spendable))
	byID := make(map[string]spendableUTXO, len(spendable))
	for i, s := range spendable {
		pool[i] = s.UTXO
		byID[s.ID] = s
	}

	selectFn := coinselect.LargestFirst
	if useRandomImprove {
		selectFn = coinselect.RandomImprove
	}
	numOutputs := uint64(1)
	result, err := selectFn(pool, numOutputs, amount, feePerByte)
	if err != nil {
		switch err {
		case coinselect.ErrBalanceInsufficient:
			return "", ErrBalanceInsufficient
		case coinselect.ErrMaxInputCountExceeded:
			return "", ErrMaxInputCountExceeded
		default:
			return "", fmt.Errorf("%w: %v", ErrCreateTx, err)
		}
	}

	var inputs []transaction.BoxedUTXOInput
	for _, sel := range result.Selected {
		s := byID[sel.ID]
		prevTx, err := w.indexer.GetTransaction(ctx, s.txid, ct.Testnet)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrIOError, err)
		}
		if int(s.vout) >= len(prevTx.Vout) {
			return "", fmt.Errorf("%w: previous output index out of range", ErrCreateTx)
		}
		txidBytes, err := codec.HexToBytes(s.txid)
		if err != nil || len(txidBytes) != 32 {
			return "", fmt.Errorf("%w: malformed previous txid", ErrCreateTx)
		}
		var txid [32]byte
		copy(txid[:], txidBytes)
		inputs = append(inputs, transaction.BoxedUTXOInput{
			TxID:       txid,
			Vout:       s.vout,
			Prevout:    prevTx.Vout[s.vout],
			PrivateKey: s.keypair.PrivateKey.Key,
			PublicKey:  s.keypair.PublicKey.Key,
		})
	}

	targets := []transaction.Target{{
		ScriptPubKeyASM: script.P2PKHScriptPubKeyASM(destAddr.Hash160),
		Value:           amount,
	}}
	var changeKeypair *bip44.Keypair
	if result.HasChange {
		changeKeypair, err = acc.Internal.NewKeypair()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrCreateTx, err)
		}
		changeAddr := changeKeypair.Address()
		targets = append(targets, transaction.Target{
			ScriptPubKeyASM: script.P2PKHScriptPubKeyASM(changeAddr.Hash160),
			Value:           result.Change,
		})
	}

	tx, err := transaction.Build(inputs, targets)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCreateTx, err)
	}
	for i, in := range inputs {
		if err := tx.SignInput(i, in.PrivateKey, in.PublicKey); err != nil {
			return "", fmt.Errorf("%w: %v", ErrCreateTx, err)
		}
	}

	if err := w.indexer.SendTransaction(ctx, tx, ct.Testnet); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSendTx, err)
	}

	if changeKeypair != nil {
		if err := w.public.MirrorKeypair(coinType, accountIndex, true, changeKeypair.Index); err != nil {
			w.log.Error().Err(err).Msg("failed to mirror change key after successful broadcast")
		}
	}
	if err := w.persistLocked(); err != nil {
		w.log.Error().Err(err).Msg("failed to persist wallet after successful broadcast")
	}

	return tx.SerializeHex(), nil
}
