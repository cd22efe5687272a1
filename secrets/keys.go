package secrets

import (
	"bytes"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/howeyc/gopass"
)

var (
	ErrEmptyKey    = errors.New("empty private key")
	ErrNoPassword  = errors.New("keystore requires a password")
	ErrInvalidKey  = errors.New("invalid private key")
	ErrKeystoreKey = errors.New("unable to decrypt keystore")
)

// PasswordFunc supplies the password of an encrypted keystore
type PasswordFunc func() ([]byte, error)

// PasswordFromFile reads the keystore password from a file, trailing
// newlines are ignored
func PasswordFromFile(path string) PasswordFunc {
	return func() ([]byte, error) {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read password file: %w", err)
		}

		return bytes.TrimRight(raw, "\r\n"), nil
	}
}

// PromptPassword asks for the keystore password on the terminal
func PromptPassword() PasswordFunc {
	return func() ([]byte, error) {
		return gopass.GetPasswdPrompt("Keystore password: ", true, os.Stdin, os.Stderr)
	}
}

func isKeystore(raw []byte) bool {
	return len(raw) > 0 && raw[0] == '{'
}

// DecodePrivateKey parses a deployer key. The secret is either a hex
// encoded private key, with or without 0x prefix, or an encrypted
// keystore JSON document.
func DecodePrivateKey(raw []byte, password PasswordFunc) (*ecdsa.PrivateKey, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, ErrEmptyKey
	}

	if !isKeystore(raw) {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(string(raw), "0x"))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}

		return key, nil
	}

	if password == nil {
		return nil, ErrNoPassword
	}

	pass, err := password()
	if err != nil {
		return nil, err
	}

	key, err := keystore.DecryptKey(raw, string(pass))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeystoreKey, err)
	}

	return key.PrivateKey, nil
}
