package crypto

import (
	"context"
	"strings"
)

const plainPrefix = "plain:"

// PlainEncryptor is the DEV_MODE Encryptor. It only tags the value so stored
// tokens are recognizably unsealed.
type PlainEncryptor struct{}

// NewPlainEncryptor creates a PlainEncryptor.
func NewPlainEncryptor() *PlainEncryptor {
	return &PlainEncryptor{}
}

// Encrypt tags plaintext with the plain: prefix.
func (PlainEncryptor) Encrypt(_ context.Context, _, plaintext string) (string, error) {
	return plainPrefix + plaintext, nil
}

// Decrypt strips the plain: prefix.
func (PlainEncryptor) Decrypt(_ context.Context, _, ciphertext string) (string, error) {
	return strings.TrimPrefix(ciphertext, plainPrefix), nil
}
