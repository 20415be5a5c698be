package walletcore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jasony/bitcoinwallet/internal/bitcoin/address"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/bip44"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/codec"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/script"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/transaction"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/walletstore"
)

// fakeIndexer is an in-memory stand-in for the mempool.space-backed
// Indexer, keyed by address string so tests can seed exactly the UTXOs and
// transactions a scenario needs.
type fakeIndexer struct {
	utxos        map[string][]UTXO
	transactions map[string][]Transaction
	fees         Fees
	sendErr      error
	sent         []*transaction.Transaction
}

func newFakeIndexer() *fakeIndexer {
	return &fakeIndexer{
		utxos:        make(map[string][]UTXO),
		transactions: make(map[string][]Transaction),
	}
}

func (f *fakeIndexer) GetAddressUTXOs(ctx context.Context, addr address.Address) ([]UTXO, error) {
	return f.utxos[addr.String()], nil
}

func (f *fakeIndexer) GetTransaction(ctx context.Context, txid string, testnet bool) (*Transaction, error) {
	for _, txs := range f.transactions {
		for _, tx := range txs {
			if tx.TxID == txid {
				t := tx
				return &t, nil
			}
		}
	}
	return nil, errors.New("fakeIndexer: unknown txid")
}

func (f *fakeIndexer) GetAddressTransactions(ctx context.Context, addr address.Address) ([]Transaction, error) {
	return f.transactions[addr.String()], nil
}

func (f *fakeIndexer) GetRecommendedFees(ctx context.Context, coinTypeIndex uint32) (Fees, error) {
	return f.fees, nil
}

func (f *fakeIndexer) SendTransaction(ctx context.Context, tx *transaction.Transaction, testnet bool) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	return nil
}

func newTestFacade(t *testing.T, indexer Indexer) *WalletCore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wallet.dat")
	return New(path, indexer, zerolog.Nop())
}

func createTestWallet(t *testing.T, w *WalletCore, password string) []string {
	t.Helper()
	words, err := w.GenerateMnemonic(128)
	if err != nil {
		t.Fatalf("GenerateMnemonic: %v", err)
	}
	if err := w.SendPassphrase(""); err != nil {
		t.Fatalf("SendPassphrase: %v", err)
	}
	if err := w.CreateMasterKey(password); err != nil {
		t.Fatalf("CreateMasterKey: %v", err)
	}
	return words
}

func TestGenerateMnemonicRequiresBitsMultipleOf32(t *testing.T) {
	w := newTestFacade(t, newFakeIndexer())
	if _, err := w.GenerateMnemonic(129); err == nil {
		t.Error("GenerateMnemonic(129) succeeded, want error")
	}
}

func TestCreateMasterKeyWithoutStagedMnemonicFails(t *testing.T) {
	w := newTestFacade(t, newFakeIndexer())
	if err := w.CreateMasterKey("password"); err != ErrNoPassphraseStaged {
		t.Errorf("CreateMasterKey error = %v, want ErrNoPassphraseStaged", err)
	}
}

func TestCreateMasterKeyTwiceFails(t *testing.T) {
	w := newTestFacade(t, newFakeIndexer())
	createTestWallet(t, w, "password")

	if _, err := w.GenerateMnemonic(128); err != nil {
		t.Fatalf("GenerateMnemonic: %v", err)
	}
	if err := w.SendPassphrase(""); err != nil {
		t.Fatalf("SendPassphrase: %v", err)
	}
	if err := w.CreateMasterKey("password"); err != ErrMasterKeyAlreadyExists {
		t.Errorf("second CreateMasterKey error = %v, want ErrMasterKeyAlreadyExists", err)
	}
}

func TestLoadMasterKeyWrongPassword(t *testing.T) {
	w := newTestFacade(t, newFakeIndexer())
	createTestWallet(t, w, "right-password")

	w2 := New(w.walletPath, newFakeIndexer(), zerolog.Nop())
	if err := w2.LoadMasterKey("wrong-password"); err != ErrWrongPassword {
		t.Errorf("LoadMasterKey error = %v, want ErrWrongPassword", err)
	}
}

func TestOperationsRequireLoadedMasterKey(t *testing.T) {
	w := newTestFacade(t, newFakeIndexer())
	if _, err := w.GetNewReceiveAddress(bip44.BitcoinIndex, 0); err != ErrNoMasterKeyLoaded {
		t.Errorf("GetNewReceiveAddress error = %v, want ErrNoMasterKeyLoaded", err)
	}
}

func TestCreateNewAccountAndReceiveAddress(t *testing.T) {
	w := newTestFacade(t, newFakeIndexer())
	createTestWallet(t, w, "password")

	overview, err := w.CreateNewAccount(bip44.BitcoinIndex)
	if err != nil {
		t.Fatalf("CreateNewAccount: %v", err)
	}
	if overview.Index != 0 {
		t.Errorf("first account index = %d, want 0", overview.Index)
	}

	addr1, err := w.GetNewReceiveAddress(bip44.BitcoinIndex, 0)
	if err != nil {
		t.Fatalf("GetNewReceiveAddress: %v", err)
	}
	addr2, err := w.GetNewReceiveAddress(bip44.BitcoinIndex, 0)
	if err != nil {
		t.Fatalf("GetNewReceiveAddress: %v", err)
	}
	if addr1 == addr2 {
		t.Error("consecutive receive addresses were identical")
	}

	all, err := w.GetAllReceiveAddresses(bip44.BitcoinIndex, 0)
	if err != nil {
		t.Fatalf("GetAllReceiveAddresses: %v", err)
	}
	if len(all) != 2 || all[0] != addr2 || all[1] != addr1 {
		t.Errorf("GetAllReceiveAddresses = %v, want [%s %s] (newest first)", all, addr2, addr1)
	}
}

func TestGetAccountBalanceSumsUTXOsAcrossChains(t *testing.T) {
	indexer := newFakeIndexer()
	w := newTestFacade(t, indexer)
	createTestWallet(t, w, "password")
	if _, err := w.CreateNewAccount(bip44.BitcoinIndex); err != nil {
		t.Fatalf("CreateNewAccount: %v", err)
	}

	addr, err := w.GetNewReceiveAddress(bip44.BitcoinIndex, 0)
	if err != nil {
		t.Fatalf("GetNewReceiveAddress: %v", err)
	}
	indexer.utxos[addr] = []UTXO{{TxID: "a", Vout: 0, Value: 1500}, {TxID: "b", Vout: 1, Value: 2500}}

	ct, _ := w.private.CoinType(bip44.BitcoinIndex)
	acc, err := ct.AccountAt(0)
	if err != nil {
		t.Fatalf("AccountAt: %v", err)
	}
	changeKP, err := acc.Internal.NewKeypair()
	if err != nil {
		t.Fatalf("Internal.NewKeypair: %v", err)
	}
	indexer.utxos[changeKP.Address().String()] = []UTXO{{TxID: "c", Vout: 0, Value: 1000}}

	balance, err := w.GetAccountBalance(context.Background(), bip44.BitcoinIndex, 0)
	if err != nil {
		t.Fatalf("GetAccountBalance: %v", err)
	}
	if balance != 5000 {
		t.Errorf("GetAccountBalance = %d, want 5000", balance)
	}
}

func TestGetAllReceiveAddressesMarkedReflectsIndexerHistory(t *testing.T) {
	indexer := newFakeIndexer()
	w := newTestFacade(t, indexer)
	createTestWallet(t, w, "password")
	if _, err := w.CreateNewAccount(bip44.BitcoinIndex); err != nil {
		t.Fatalf("CreateNewAccount: %v", err)
	}
	usedAddr, err := w.GetNewReceiveAddress(bip44.BitcoinIndex, 0)
	if err != nil {
		t.Fatalf("GetNewReceiveAddress: %v", err)
	}
	unusedAddr, err := w.GetNewReceiveAddress(bip44.BitcoinIndex, 0)
	if err != nil {
		t.Fatalf("GetNewReceiveAddress: %v", err)
	}
	indexer.transactions[usedAddr] = []Transaction{{TxID: "seen"}}

	marked, err := w.GetAllReceiveAddressesMarked(context.Background(), bip44.BitcoinIndex, 0)
	if err != nil {
		t.Fatalf("GetAllReceiveAddressesMarked: %v", err)
	}
	byAddr := make(map[string]bool, len(marked))
	for _, m := range marked {
		byAddr[m.Address] = m.Used
	}
	if !byAddr[usedAddr] {
		t.Errorf("%s should be marked used", usedAddr)
	}
	if byAddr[unusedAddr] {
		t.Errorf("%s should be marked unused", unusedAddr)
	}
}

func TestValidateAddressRejectsGarbage(t *testing.T) {
	if _, err := ValidateAddress("not-an-address"); err == nil {
		t.Error("ValidateAddress(garbage) succeeded, want error")
	}
}

func TestClassifyDirections(t *testing.T) {
	owned := map[string]bool{"mine": true}
	incoming := classify(Transaction{
		Vin:  []transaction.TxIn{{Prevout: transaction.TxOut{Address: "theirs"}}},
		Vout: []transaction.TxOut{{Address: "mine", Value: 1000}},
	}, owned)
	if incoming.Direction != DirectionIncoming || incoming.Value != 1000 {
		t.Errorf("incoming classify = %+v", incoming)
	}

	outgoing := classify(Transaction{
		Vin:  []transaction.TxIn{{Prevout: transaction.TxOut{Address: "mine"}}},
		Vout: []transaction.TxOut{{Address: "theirs", Value: 500}},
	}, owned)
	if outgoing.Direction != DirectionOutgoing || outgoing.Value != 500 {
		t.Errorf("outgoing classify = %+v", outgoing)
	}

	internal := classify(Transaction{
		Vin:  []transaction.TxIn{{Prevout: transaction.TxOut{Address: "mine"}}},
		Vout: []transaction.TxOut{{Address: "mine", Value: 300}},
	}, owned)
	if internal.Direction != DirectionInternal || internal.Value != 0 {
		t.Errorf("internal classify = %+v", internal)
	}
}

func TestGetRecommendedFeesProxiesIndexer(t *testing.T) {
	indexer := newFakeIndexer()
	indexer.fees = Fees{FastestFee: 10, HalfHourFee: 8, HourFee: 5, EconomyFee: 2, MinimumFee: 1}
	w := newTestFacade(t, indexer)
	fees, err := w.GetRecommendedFees(context.Background(), bip44.BitcoinIndex)
	if err != nil {
		t.Fatalf("GetRecommendedFees: %v", err)
	}
	if fees != indexer.fees {
		t.Errorf("GetRecommendedFees = %+v, want %+v", fees, indexer.fees)
	}
}

func TestSendTransactionBroadcastsAndPersistsChange(t *testing.T) {
	indexer := newFakeIndexer()
	w := newTestFacade(t, indexer)
	createTestWallet(t, w, "password")
	if _, err := w.CreateNewAccount(bip44.BitcoinIndex); err != nil {
		t.Fatalf("CreateNewAccount: %v", err)
	}
	fundedAddr, err := w.GetNewReceiveAddress(bip44.BitcoinIndex, 0)
	if err != nil {
		t.Fatalf("GetNewReceiveAddress: %v", err)
	}

	fundingTxID := "aa" + "000000000000000000000000000000000000000000000000000000000000" + "0a"
	indexer.utxos[fundedAddr] = []UTXO{{TxID: fundingTxID, Vout: 0, Value: 100000}}
	hash160, err := addressHash160(fundedAddr)
	if err != nil {
		t.Fatalf("addressHash160: %v", err)
	}
	indexer.transactions[fundedAddr] = []Transaction{{
		TxID: fundingTxID,
		Vout: []transaction.TxOut{{
			Value:           100000,
			Type:            script.TypeP2PKH,
			ScriptPubKeyASM: "OP_DUP OP_HASH160 " + hash160 + " OP_EQUALVERIFY OP_CHECKSIG",
			Address:         fundedAddr,
		}},
	}}

	destAddr, err := w.GetNewReceiveAddress(bip44.BitcoinIndex, 0)
	if err != nil {
		t.Fatalf("GetNewReceiveAddress for dest: %v", err)
	}

	raw, err := w.SendTransaction(context.Background(), bip44.BitcoinIndex, 0, destAddr, 10000, 2, false)
	if err != nil {
		t.Fatalf("SendTransaction: %v", err)
	}
	if raw == "" {
		t.Error("SendTransaction returned empty raw hex")
	}
	if len(indexer.sent) != 1 {
		t.Fatalf("indexer received %d transactions, want 1", len(indexer.sent))
	}

	reloaded, err := walletstore.Load(w.walletPath, "password")
	if err != nil {
		t.Fatalf("walletstore.Load: %v", err)
	}
	ct, _ := reloaded.CoinType(bip44.BitcoinIndex)
	if got := len(ct.Accounts[0].Internal.Keypairs); got != 1 {
		t.Errorf("persisted change keypairs = %d, want 1", got)
	}
}

func addressHash160(addr string) (string, error) {
	_, payload, err := codec.Base58CheckDecode(addr)
	if err != nil {
		return "", err
	}
	return codec.BytesToHex(payload), nil
}
