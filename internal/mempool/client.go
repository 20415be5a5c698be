// Package mempool implements walletcore.Indexer against the
// mempool.space REST API, the concrete blockchain-indexing collaborator
// this wallet ships.
package mempool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jasony/bitcoinwallet/internal/bitcoin/address"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/script"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/transaction"
	"github.com/jasony/bitcoinwallet/internal/walletcore"
)

// Mainnet and testnet API roots, unchanged from the system this
// collaborator's REST contract was modeled on.
const (
	MainnetAPI = "https://mempool.space/api"
	TestnetAPI = "https://mempool.space/testnet/api"
)

// ErrBroadcastFailed is returned by SendTransaction when the API's
// response body contains the substring "error" — the same unrefined
// string-sniffing contract the system this client was modeled on used,
// preserved here rather than upgraded, since tightening a collaborator's
// wire contract is outside this core's scope.
var ErrBroadcastFailed = errors.New("mempool: broadcast response indicates an error")

// Client is a mempool.space REST client satisfying walletcore.Indexer.
type Client struct {
	HTTP *http.Client
	log  zerolog.Logger

	// APIRoot overrides both the mainnet and testnet API roots when set,
	// for pointing at a self-hosted mempool.space instance or a local
	// stub during offline testing. Empty keeps the MainnetAPI/TestnetAPI
	// defaults.
	APIRoot string
}

// New constructs a Client using httpClient (nil selects http.DefaultClient).
// apiRoot overrides the default MainnetAPI/TestnetAPI roots when non-empty.
func New(httpClient *http.Client, log zerolog.Logger, apiRoot string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{HTTP: httpClient, log: log, APIRoot: apiRoot}
}

func (c *Client) apiRoot(testnet bool) string {
	if c.APIRoot != "" {
		return c.APIRoot
	}
	if testnet {
		return TestnetAPI
	}
	return MainnetAPI
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("mempool: %s returned status %d: %s", url, resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}

// utxoStatusDTO mirrors mempool.space's "status" object on both UTXOs and
// transactions.
type utxoStatusDTO struct {
	Confirmed   bool   `json:"confirmed"`
	BlockHeight uint32 `json:"block_height"`
	BlockHash   string `json:"block_hash"`
	BlockTime   uint64 `json:"block_time"`
}

func (s utxoStatusDTO) toDomain() walletcore.UTXOStatus {
	return walletcore.UTXOStatus{
		Confirmed:   s.Confirmed,
		BlockHeight: s.BlockHeight,
		BlockHash:   s.BlockHash,
		BlockTime:   s.BlockTime,
	}
}

type utxoDTO struct {
	TxID   string        `json:"txid"`
	Vout   uint32        `json:"vout"`
	Value  uint64        `json:"value"`
	Status utxoStatusDTO `json:"status"`
}

// GetAddressUTXOs fetches every UTXO currently owned by addr.
func (c *Client) GetAddressUTXOs(ctx context.Context, addr address.Address) ([]walletcore.UTXO, error) {
	url := fmt.Sprintf("%s/address/%s/utxo", c.apiRoot(addr.Testnet), addr.String())
	var dtos []utxoDTO
	if err := c.getJSON(ctx, url, &dtos); err != nil {
		return nil, err
	}
	out := make([]walletcore.UTXO, len(dtos))
	for i, d := range dtos {
		out[i] = walletcore.UTXO{TxID: d.TxID, Vout: d.Vout, Value: d.Value, Status: d.Status.toDomain()}
	}
	return out, nil
}

type prevoutDTO struct {
	ScriptPubKey        string `json:"scriptpubkey"`
	ScriptPubKeyASM     string `json:"scriptpubkey_asm"`
	ScriptPubKeyType    string `json:"scriptpubkey_type"`
	ScriptPubKeyAddress string `json:"scriptpubkey_address"`
	Value               uint64 `json:"value"`
}

type vinDTO struct {
	TxID    string     `json:"txid"`
	Vout    uint32     `json:"vout"`
	Prevout prevoutDTO `json:"prevout"`
	Witness []string   `json:"witness"`
}

type voutDTO struct {
	ScriptPubKey        string `json:"scriptpubkey"`
	ScriptPubKeyASM     string `json:"scriptpubkey_asm"`
	ScriptPubKeyType    string `json:"scriptpubkey_type"`
	ScriptPubKeyAddress string `json:"scriptpubkey_address"`
	Value               uint64 `json:"value"`
}

type transactionDTO struct {
	TxID     string        `json:"txid"`
	Version  uint32        `json:"version"`
	Locktime uint32        `json:"locktime"`
	Vin      []vinDTO      `json:"vin"`
	Vout     []voutDTO     `json:"vout"`
	Size     uint64        `json:"size"`
	Weight   uint64        `json:"weight"`
	Fee      uint64        `json:"fee"`
	Status   utxoStatusDTO `json:"status"`
}

func p2pkhType(scriptPubKeyType string) script.Type {
	if scriptPubKeyType == "p2pkh" {
		return script.TypeP2PKH
	}
	return script.Type(scriptPubKeyType)
}

// p2pkhASM recovers the canonical P2PKH scriptPubKey asm for addr when
// the indexer reports the output as p2pkh; Build/SignatureHash need the
// asm form to re-serialize the previous scriptPubKey, which the API's
// own scriptpubkey_asm field is not guaranteed to match token-for-token.
func p2pkhASM(scriptPubKeyType, addr string) string {
	if scriptPubKeyType != "p2pkh" || addr == "" {
		return ""
	}
	parsed, err := address.Parse(addr)
	if err != nil {
		return ""
	}
	return script.P2PKHScriptPubKeyASM(parsed.Hash160)
}

func (d transactionDTO) toDomain() walletcore.Transaction {
	vin := make([]transaction.TxIn, len(d.Vin))
	for i, in := range d.Vin {
		vin[i] = transaction.TxIn{
			Sequence: 0xFFFFFFFF,
			Prevout: transaction.TxOut{
				Value:           in.Prevout.Value,
				Type:            p2pkhType(in.Prevout.ScriptPubKeyType),
				Address:         in.Prevout.ScriptPubKeyAddress,
				ScriptPubKeyASM: p2pkhASM(in.Prevout.ScriptPubKeyType, in.Prevout.ScriptPubKeyAddress),
			},
		}
	}
	vout := make([]transaction.TxOut, len(d.Vout))
	for i, out := range d.Vout {
		vout[i] = transaction.TxOut{
			Value:           out.Value,
			Type:            p2pkhType(out.ScriptPubKeyType),
			Address:         out.ScriptPubKeyAddress,
			ScriptPubKeyASM: p2pkhASM(out.ScriptPubKeyType, out.ScriptPubKeyAddress),
		}
	}
	return walletcore.Transaction{
		TxID:     d.TxID,
		Version:  d.Version,
		Locktime: d.Locktime,
		Vin:      vin,
		Vout:     vout,
		Size:     d.Size,
		Weight:   d.Weight,
		Fee:      d.Fee,
		Status:   d.Status.toDomain(),
	}
}

// GetTransaction fetches a single transaction by txid.
func (c *Client) GetTransaction(ctx context.Context, txid string, testnet bool) (*walletcore.Transaction, error) {
	url := fmt.Sprintf("%s/tx/%s", c.apiRoot(testnet), txid)
	var dto transactionDTO
	if err := c.getJSON(ctx, url, &dto); err != nil {
		return nil, err
	}
	tx := dto.toDomain()
	return &tx, nil
}

// GetAddressTransactions fetches every transaction touching addr.
func (c *Client) GetAddressTransactions(ctx context.Context, addr address.Address) ([]walletcore.Transaction, error) {
	url := fmt.Sprintf("%s/address/%s/txs", c.apiRoot(addr.Testnet), addr.String())
	var dtos []transactionDTO
	if err := c.getJSON(ctx, url, &dtos); err != nil {
		return nil, err
	}
	out := make([]walletcore.Transaction, len(dtos))
	for i, d := range dtos {
		out[i] = d.toDomain()
	}
	return out, nil
}

type feesDTO struct {
	FastestFee  uint32 `json:"fastestFee"`
	HalfHourFee uint32 `json:"halfHourFee"`
	HourFee     uint32 `json:"hourFee"`
	EconomyFee  uint32 `json:"economyFee"`
	MinimumFee  uint32 `json:"minimumFee"`
}

// GetRecommendedFees fetches the current recommended-fee schedule,
// choosing the API root by coinTypeIndex (1 = testnet, matching the
// wallet's BIP-44 coin-type registry).
func (c *Client) GetRecommendedFees(ctx context.Context, coinTypeIndex uint32) (walletcore.Fees, error) {
	url := fmt.Sprintf("%s/v1/fees/recommended", c.apiRoot(coinTypeIndex == 1))
	var dto feesDTO
	if err := c.getJSON(ctx, url, &dto); err != nil {
		return walletcore.Fees{}, err
	}
	return walletcore.Fees{
		FastestFee:  dto.FastestFee,
		HalfHourFee: dto.HalfHourFee,
		HourFee:     dto.HourFee,
		EconomyFee:  dto.EconomyFee,
		MinimumFee:  dto.MinimumFee,
	}, nil
}

// SendTransaction broadcasts tx's raw hex. A response body containing
// "error" is treated as a broadcast failure, matching the original
// client's substring check exactly.
func (c *Client) SendTransaction(ctx context.Context, tx *transaction.Transaction, testnet bool) error {
	url := fmt.Sprintf("%s/tx", c.apiRoot(testnet))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(tx.SerializeHex()))
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	c.log.Debug().Str("txid", tx.SerializeHex()[:16]).Int("status", resp.StatusCode).Msg("broadcast transaction")
	if strings.Contains(string(body), "error") {
		return ErrBroadcastFailed
	}
	return nil
}
