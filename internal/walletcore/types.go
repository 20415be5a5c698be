// Package walletcore is the facade: it orchestrates mnemonic/key
// derivation, persistence, coin selection, and transaction assembly into
// the handful of high-level operations a CLI or UI drives the wallet
// through.
package walletcore

import "github.com/jasony/bitcoinwallet/internal/bitcoin/transaction"

// UTXOStatus carries the indexer's confirmation view of a UTXO or
// transaction.
type UTXOStatus struct {
	Confirmed   bool
	BlockHeight uint32
	BlockHash   string
	BlockTime   uint64
}

// UTXO is a single unspent transaction output as reported by the indexer.
type UTXO struct {
	TxID   string
	Vout   uint32
	Value  uint64
	Status UTXOStatus
}

// Transaction is the indexer's view of a transaction: the raw vin/vout
// shape plus network-only metadata the core's own transaction.Transaction
// does not carry.
type Transaction struct {
	TxID     string
	Version  uint32
	Locktime uint32
	Vin      []transaction.TxIn
	Vout     []transaction.TxOut
	Size     uint64
	Weight   uint64
	Fee      uint64
	Status   UTXOStatus
}

// TransactionDirection classifies a transaction from the wallet's point
// of view.
type TransactionDirection string

const (
	DirectionIncoming TransactionDirection = "Incoming"
	DirectionOutgoing TransactionDirection = "Outgoing"
	DirectionInternal TransactionDirection = "Internal"
)

// SimplifiedTransaction is the condensed history entry
// get_simple_transactions returns.
type SimplifiedTransaction struct {
	TxID      string
	Direction TransactionDirection
	Value     uint64
	Fee       uint64
	Confirmed bool
}

// SimpleAddress pairs a receive address string with whether the indexer
// has ever observed a transaction touching it.
type SimpleAddress struct {
	Address string
	Used    bool
}

// Fees is the recommended-fee schedule returned by the indexer, in base
// units per byte.
type Fees struct {
	FastestFee  uint32
	HalfHourFee uint32
	HourFee     uint32
	EconomyFee  uint32
	MinimumFee  uint32
}

// AccountOverview summarizes one BIP-44 account for get_accounts_overview.
type AccountOverview struct {
	Index   uint32
	Balance uint64
}
