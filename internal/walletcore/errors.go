package walletcore

import "errors"

// Error tags the facade maps its failures to, exposed as sentinel errors
// so callers can test with errors.Is while the wrapped error still
// carries the underlying cause via %w.
var (
	ErrIOError                = errors.New("walletcore: io_error")
	ErrWrongPassword          = errors.New("walletcore: wrong_password_error")
	ErrOther                  = errors.New("walletcore: other_error")
	ErrSendTx                 = errors.New("walletcore: send_tx_error")
	ErrCreateTx               = errors.New("walletcore: create_tx_error")
	ErrBalanceInsufficient    = errors.New("walletcore: balance_insufficient")
	ErrMaxInputCountExceeded  = errors.New("walletcore: max_input_count_exceeded")
	ErrWrongAddressType       = errors.New("walletcore: Wrong address type")
	ErrMasterKeyAlreadyExists = errors.New("walletcore: master key already exists at the configured path")
	ErrNoMasterKeyLoaded      = errors.New("walletcore: no master key is currently loaded")
	ErrNoPassphraseStaged     = errors.New("walletcore: no mnemonic/passphrase staged; call GenerateMnemonic and SendPassphrase first")
)
