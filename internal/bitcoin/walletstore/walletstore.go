package walletstore

import (
	"os"

	"github.com/jasony/bitcoinwallet/internal/bitcoin/bip44"
	"github.com/jasony/bitcoinwallet/internal/bitcoin/hashutil"
)

// filePermissions restricts the encrypted wallet file to owner read/write,
// since it carries an AES-GCM envelope over the entire private hierarchy.
const filePermissions = 0o600

// Save serializes h and writes its AES-256-GCM envelope to path.
func Save(path string, password string, h *bip44.PrivateHierarchy) error {
	plaintext := Serialize(h)
	ciphertext, err := hashutil.Encrypt(password, plaintext)
	if err != nil {
		return err
	}
	return os.WriteFile(path, ciphertext, filePermissions)
}

// Load reads path, decrypts it with password (returning
// hashutil.ErrWrongPassword on a tag mismatch), and deserializes the
// resulting plaintext back into a fully populated PrivateHierarchy.
func Load(path string, password string) (*bip44.PrivateHierarchy, error) {
	ciphertext, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	plaintext, err := hashutil.Decrypt(password, ciphertext)
	if err != nil {
		return nil, err
	}
	return Deserialize(plaintext)
}

// Exists reports whether a wallet file is already present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
