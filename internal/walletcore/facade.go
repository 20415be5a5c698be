package walletcore

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jasony/bitcoinwallet/internal/bitcoin/bip39"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/bip44"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/hashutil"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/walletstore"
)

// sessionKeyMnemonic and sessionKeyPassphrase are the cache keys staged
// between GenerateMnemonic/SendPassphrase and CreateMasterKey, in the
// style of the session map the system this facade was modeled on keeps
// for the same purpose.
const (
	sessionKeyMnemonic       = "mnemonic"
	sessionKeyPassphrase     = "passphrase"
	sessionKeyActivePassword = "active_password"
)

// WalletCore is the facade presented to a CLI or UI: it orchestrates
// mnemonic/key derivation, encrypted persistence, coin selection, and
// transaction assembly behind the operation names of the system this
// wallet's surface was modeled on.
//
// Session state mirrors that system's Database(Arc<Mutex<HashMap<String,
// Vec<u8>>>>): a single mutex-guarded map staging the mnemonic/passphrase
// pair before a master key exists. Once a master key is loaded or
// created, this facade holds the structured private/public hierarchies
// directly rather than re-serializing them back into that byte map on
// every access — an idiomatic-Go simplification of the same idea, since
// Go has no need for the Rust-side interior-mutability workaround the
// byte map existed to support.
type WalletCore struct {
	mu sync.Mutex

	walletPath string
	indexer    Indexer
	log        zerolog.Logger

	session map[string]string

	private *bip44.PrivateHierarchy
	public  *bip44.PublicHierarchy
}

// New constructs a facade over a wallet file path and a blockchain
// indexer collaborator.
func New(walletPath string, indexer Indexer, log zerolog.Logger) *WalletCore {
	return &WalletCore{
		walletPath: walletPath,
		indexer:    indexer,
		log:        log,
		session:    make(map[string]string),
	}
}

// GenerateMnemonic generates a fresh mnemonic of the given entropy size
// and stages it in the session for a subsequent SendPassphrase +
// CreateMasterKey.
func (w *WalletCore) GenerateMnemonic(entropyBits int) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	words, err := bip39.GenerateMnemonic(entropyBits, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOther, err)
	}
	w.session[sessionKeyMnemonic] = strings.Join(words, " ")
	w.log.Info().Int("entropy_bits", entropyBits).Msg("generated mnemonic")
	return words, nil
}

// SendPassphrase stages an optional BIP-39 passphrase alongside the
// already-generated mnemonic.
func (w *WalletCore) SendPassphrase(passphrase string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.session[sessionKeyMnemonic]; !ok {
		return ErrNoPassphraseStaged
	}
	w.session[sessionKeyPassphrase] = passphrase
	return nil
}

// DoesMasterKeyExist reports whether a wallet file already exists at the
// configured path.
func (w *WalletCore) DoesMasterKeyExist() bool {
	return walletstore.Exists(w.walletPath)
}

// CreateMasterKey derives the private hierarchy from the staged
// mnemonic/passphrase, persists it under password, and loads it into the
// facade's active session. Fails if a wallet file already exists at the
// configured path.
func (w *WalletCore) CreateMasterKey(password string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if walletstore.Exists(w.walletPath) {
		return ErrMasterKeyAlreadyExists
	}
	mnemonicStr, ok := w.session[sessionKeyMnemonic]
	if !ok {
		return ErrNoPassphraseStaged
	}
	passphrase := w.session[sessionKeyPassphrase]

	seed := bip39.Seed(strings.Fields(mnemonicStr), passphrase)
	private, err := bip44.CreateFromSeed(seed)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOther, err)
	}
	public, err := bip44.CreateFromPrivate(private)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOther, err)
	}
	if err := walletstore.Save(w.walletPath, password, private); err != nil {
		return fmt.Errorf("%w: %v", ErrIOError, err)
	}

	w.private = private
	w.public = public
	delete(w.session, sessionKeyMnemonic)
	delete(w.session, sessionKeyPassphrase)
	w.session[sessionKeyActivePassword] = password
	w.log.Info().Str("path", w.walletPath).Msg("created master key")
	return nil
}

// LoadMasterKey decrypts the wallet file under password and loads it
// into the facade's active session.
func (w *WalletCore) LoadMasterKey(password string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	private, err := walletstore.Load(w.walletPath, password)
	if err != nil {
		if err == hashutil.ErrWrongPassword {
			return ErrWrongPassword
		}
		return fmt.Errorf("%w: %v", ErrIOError, err)
	}
	public, err := bip44.CreateFromPrivate(private)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOther, err)
	}
	w.private = private
	w.public = public
	w.session[sessionKeyActivePassword] = password
	w.log.Info().Str("path", w.walletPath).Msg("loaded master key")
	return nil
}

// requireLoaded returns ErrNoMasterKeyLoaded unless a hierarchy is
// active.
func (w *WalletCore) requireLoaded() error {
	if w.private == nil {
		return ErrNoMasterKeyLoaded
	}
	return nil
}
