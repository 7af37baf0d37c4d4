package services

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/tickhubhq/tickhub-backend/internal/pkg/logger"
)

// SecretCipher encrypts integration API tokens at rest. Tokens never hit
// the database or the logs in the clear.
type SecretCipher interface {
	Encrypt(plaintext string) ([]byte, error)
	Decrypt(blob []byte) (string, error)
}

type secretCipher struct {
	log *logger.Logger
	key [chacha20poly1305.KeySize]byte
}

// NewSecretCipher derives a 256-bit key from the configured secret. Any
// non-empty string works; it is hashed, not used directly.
func NewSecretCipher(baseLog *logger.Logger, keyMaterial string) (SecretCipher, error) {
	keyMaterial = strings.TrimSpace(keyMaterial)
	if keyMaterial == "" {
		return nil, fmt.Errorf("missing TOKEN_CIPHER_KEY")
	}
	c := &secretCipher{log: baseLog.With("service", "SecretCipher")}
	c.key = sha256.Sum256([]byte(keyMaterial))
	return c, nil
}

func (c *secretCipher) Encrypt(plaintext string) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(c.key[:])
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)
	return append(nonce, sealed...), nil
}

func (c *secretCipher) Decrypt(blob []byte) (string, error) {
	aead, err := chacha20poly1305.NewX(c.key[:])
	if err != nil {
		return "", err
	}
	if len(blob) < chacha20poly1305.NonceSizeX {
		return "", fmt.Errorf("ciphertext too short")
	}
	nonce, sealed := blob[:chacha20poly1305.NonceSizeX], blob[chacha20poly1305.NonceSizeX:]
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("token decrypt failed: %w", err)
	}
	return string(plain), nil
}
