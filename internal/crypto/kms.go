// Package crypto seals device refresh tokens before they are persisted.
package crypto

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
)

// Encryptor seals and opens secrets bound to a device.
type Encryptor interface {
	Encrypt(ctx context.Context, deviceID, plaintext string) (string, error)
	Decrypt(ctx context.Context, deviceID, ciphertext string) (string, error)
}

// KMSClient is the subset of *kms.Client used by KMSEncryptor.
type KMSClient interface {
	Encrypt(ctx context.Context, params *kms.EncryptInput, optFns ...func(*kms.Options)) (*kms.EncryptOutput, error)
	Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error)
}

// KMSEncryptor implements Encryptor with AWS KMS. The device ID is bound as
// encryption context, so a ciphertext only opens for the device it was
// sealed for.
type KMSEncryptor struct {
	client KMSClient
	keyID  string
}

// NewKMSEncryptor creates a KMSEncryptor.
// keyID can be a key ID, key ARN, or alias name (e.g., "alias/doorlock-token-key").
func NewKMSEncryptor(client KMSClient, keyID string) *KMSEncryptor {
	return &KMSEncryptor{client: client, keyID: keyID}
}

func encryptionContext(deviceID string) map[string]string {
	return map[string]string{"device_id": deviceID}
}

// Encrypt returns the base64 encoded ciphertext.
func (e *KMSEncryptor) Encrypt(ctx context.Context, deviceID, plaintext string) (string, error) {
	out, err := e.client.Encrypt(ctx, &kms.EncryptInput{
		KeyId:             aws.String(e.keyID),
		Plaintext:         []byte(plaintext),
		EncryptionContext: encryptionContext(deviceID),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encrypt for device %s: %w", deviceID, err)
	}
	return base64.StdEncoding.EncodeToString(out.CiphertextBlob), nil
}

// Decrypt opens a ciphertext produced by Encrypt for the same device.
func (e *KMSEncryptor) Decrypt(ctx context.Context, deviceID, ciphertext string) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	out, err := e.client.Decrypt(ctx, &kms.DecryptInput{
		CiphertextBlob:    blob,
		KeyId:             aws.String(e.keyID),
		EncryptionContext: encryptionContext(deviceID),
	})
	if err != nil {
		return "", fmt.Errorf("failed to decrypt for device %s: %w", deviceID, err)
	}
	return string(out.Plaintext), nil
}
