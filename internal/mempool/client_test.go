package mempool

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jasony/bitcoinwallet/internal/bitcoin/address"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/script"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/transaction"
)

// redirectTransport rewrites every request's scheme/host to target's,
// preserving path and query, so Client's hardcoded MainnetAPI/TestnetAPI
// constants can be exercised against an httptest.Server.
type redirectTransport struct {
	target *url.URL
}

func (rt redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = rt.target.Scheme
	req.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	target, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("url.Parse: %v", err)
	}
	httpClient := &http.Client{Transport: redirectTransport{target: target}}
	return New(httpClient, zerolog.Nop(), "")
}

// newOverrideTestClient builds a Client pointed straight at an
// httptest.Server via the APIRoot override, rather than the
// redirectTransport hack newTestClient relies on.
func newOverrideTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.Client(), zerolog.Nop(), srv.URL)
}

func TestAPIRootOverrideTakesPrecedenceOverDefaults(t *testing.T) {
	var gotPath string
	c := newOverrideTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`[]`))
	}))
	addr := address.Address{Testnet: true, Hash160: [20]byte{1}}
	if _, err := c.GetAddressUTXOs(context.Background(), addr); err != nil {
		t.Fatalf("GetAddressUTXOs: %v", err)
	}
	if !strings.HasSuffix(gotPath, "/utxo") {
		t.Errorf("request path = %q, want a path ending in /utxo", gotPath)
	}
}

func TestGetAddressUTXOsDecodesDTOs(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/utxo") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]utxoDTO{
			{TxID: "t1", Vout: 0, Value: 1000, Status: utxoStatusDTO{Confirmed: true, BlockHeight: 5}},
		})
	}))
	addr := address.Address{Testnet: false, Hash160: [20]byte{1}}
	utxos, err := c.GetAddressUTXOs(context.Background(), addr)
	if err != nil {
		t.Fatalf("GetAddressUTXOs: %v", err)
	}
	if len(utxos) != 1 || utxos[0].TxID != "t1" || utxos[0].Value != 1000 || !utxos[0].Status.Confirmed {
		t.Errorf("GetAddressUTXOs = %+v", utxos)
	}
}

func TestGetRecommendedFeesMainnetVsTestnetRoot(t *testing.T) {
	var gotPath string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(feesDTO{FastestFee: 20, HalfHourFee: 15, HourFee: 10, EconomyFee: 5, MinimumFee: 1})
	}))
	fees, err := c.GetRecommendedFees(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetRecommendedFees: %v", err)
	}
	if fees.FastestFee != 20 {
		t.Errorf("FastestFee = %d, want 20", fees.FastestFee)
	}
	if !strings.Contains(gotPath, "/fees/recommended") {
		t.Errorf("path = %s, want suffix /fees/recommended", gotPath)
	}
	if !strings.HasPrefix(gotPath, "/testnet/api/") {
		t.Errorf("testnet path = %s, want prefix /testnet/api/", gotPath)
	}
	if _, err := c.GetRecommendedFees(context.Background(), 0); err != nil {
		t.Fatalf("GetRecommendedFees(mainnet): %v", err)
	}
	if gotPath != "/api/v1/fees/recommended" {
		t.Errorf("mainnet path = %s, want /api/v1/fees/recommended", gotPath)
	}
}

func TestSendTransactionSuccess(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("d34db33f"))
	}))
	tx := &transaction.Transaction{}
	if err := c.SendTransaction(context.Background(), tx, false); err != nil {
		t.Errorf("SendTransaction: %v", err)
	}
}

func TestSendTransactionErrorSubstring(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("sendrawtransaction RPC error: {...}"))
	}))
	tx := &transaction.Transaction{}
	if err := c.SendTransaction(context.Background(), tx, false); err != ErrBroadcastFailed {
		t.Errorf("SendTransaction error = %v, want ErrBroadcastFailed", err)
	}
}

func TestP2PKHTypeRecognizesP2PKH(t *testing.T) {
	if got := p2pkhType("p2pkh"); got != script.TypeP2PKH {
		t.Errorf("p2pkhType(p2pkh) = %v, want TypeP2PKH", got)
	}
	if got := p2pkhType("v0_p2wpkh"); got != script.Type("v0_p2wpkh") {
		t.Errorf("p2pkhType(v0_p2wpkh) = %v, want passthrough", got)
	}
}

func TestP2PKHASMReturnsEmptyForNonP2PKH(t *testing.T) {
	if got := p2pkhASM("v0_p2wpkh", "bc1qsomething"); got != "" {
		t.Errorf("p2pkhASM for non-p2pkh = %q, want empty", got)
	}
	if got := p2pkhASM("p2pkh", ""); got != "" {
		t.Errorf("p2pkhASM with empty address = %q, want empty", got)
	}
}

func TestTransactionDTOToDomain(t *testing.T) {
	dto := transactionDTO{
		TxID:     "abc",
		Version:  1,
		Locktime: 0,
		Fee:      500,
		Status:   utxoStatusDTO{Confirmed: true},
		Vin: []vinDTO{{
			TxID: "prev", Vout: 0,
			Prevout: prevoutDTO{Value: 2000, ScriptPubKeyType: "p2pkh", ScriptPubKeyAddress: "1BoatSLRHtKNngkdXEeobR76b53LETtpyT"},
		}},
		Vout: []voutDTO{{
			Value: 1500, ScriptPubKeyType: "p2pkh", ScriptPubKeyAddress: "1BoatSLRHtKNngkdXEeobR76b53LETtpyT",
		}},
	}
	domain := dto.toDomain()
	if domain.TxID != "abc" || domain.Fee != 500 || !domain.Status.Confirmed {
		t.Errorf("toDomain top-level fields wrong: %+v", domain)
	}
	if len(domain.Vin) != 1 || domain.Vin[0].Prevout.Value != 2000 {
		t.Errorf("toDomain vin wrong: %+v", domain.Vin)
	}
	if domain.Vin[0].Prevout.ScriptPubKeyASM == "" {
		t.Error("toDomain left ScriptPubKeyASM empty for a valid p2pkh address")
	}
	if len(domain.Vout) != 1 || domain.Vout[0].Value != 1500 {
		t.Errorf("toDomain vout wrong: %+v", domain.Vout)
	}
}
