// Package secrets encrypts provider credentials before they are stored in the
// system_setting table. Keys at rest are fernet tokens; decryption applies no
// TTL since stored credentials do not expire on their own.
package secrets

import (
	"fmt"

	"github.com/fernet/fernet-go"
)

// Encryptor wraps a fernet key for symmetric encryption of short secrets.
type Encryptor struct {
	key *fernet.Key
}

// NewEncryptor parses a base64-encoded fernet key.
func NewEncryptor(encodedKey string) (*Encryptor, error) {
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode fernet key: %w", err)
	}
	return &Encryptor{key: key}, nil
}

// Encrypt returns the fernet token for plaintext.
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	token, err := fernet.EncryptAndSign([]byte(plaintext), e.key)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt secret: %w", err)
	}
	return string(token), nil
}

// Decrypt verifies and decrypts a fernet token produced by Encrypt.
func (e *Encryptor) Decrypt(token string) (string, error) {
	plaintext := fernet.VerifyAndDecrypt([]byte(token), 0, []*fernet.Key{e.key})
	if plaintext == nil {
		return "", fmt.Errorf("failed to decrypt secret: invalid token")
	}
	return string(plaintext), nil
}
