package walletcore

import (
	"context"

	"github.com/jasony/bitcoinwallet/internal/bitcoin/address"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/transaction"
)

// Indexer is the blockchain-indexing collaborator the facade depends on.
// internal/mempool implements this against mempool.space; tests supply a
// fake.
type Indexer interface {
	GetAddressUTXOs(ctx context.Context, addr address.Address) ([]UTXO, error)
	GetTransaction(ctx context.Context, txid string, testnet bool) (*Transaction, error)
	GetAddressTransactions(ctx context.Context, addr address.Address) ([]Transaction, error)
	GetRecommendedFees(ctx context.Context, coinTypeIndex uint32) (Fees, error)
	SendTransaction(ctx context.Context, tx *transaction.Transaction, testnet bool) error
}
