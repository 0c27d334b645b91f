package crypto

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/kms"
)

// fakeKMS "encrypts" by reversing the plaintext and checks the encryption
// context on the way back.
type fakeKMS struct {
	lastContext map[string]string
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}

func (f *fakeKMS) Encrypt(_ context.Context, in *kms.EncryptInput, _ ...func(*kms.Options)) (*kms.EncryptOutput, error) {
	f.lastContext = in.EncryptionContext
	blob := append([]byte(in.EncryptionContext["device_id"]+"|"), reverse(in.Plaintext)...)
	return &kms.EncryptOutput{CiphertextBlob: blob}, nil
}

func (f *fakeKMS) Decrypt(_ context.Context, in *kms.DecryptInput, _ ...func(*kms.Options)) (*kms.DecryptOutput, error) {
	prefix := in.EncryptionContext["device_id"] + "|"
	if len(in.CiphertextBlob) < len(prefix) || string(in.CiphertextBlob[:len(prefix)]) != prefix {
		return nil, errors.New("InvalidCiphertextException")
	}
	return &kms.DecryptOutput{Plaintext: reverse(in.CiphertextBlob[len(prefix):])}, nil
}

func TestKMSEncryptor_RoundTrip(t *testing.T) {
	fake := &fakeKMS{}
	e := NewKMSEncryptor(fake, "alias/doorlock-token-key")
	ctx := context.Background()

	sealed, err := e.Encrypt(ctx, "front-door", "refresh-123")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if fake.lastContext["device_id"] != "front-door" {
		t.Errorf("expected device_id encryption context, got %v", fake.lastContext)
	}

	opened, err := e.Decrypt(ctx, "front-door", sealed)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if opened != "refresh-123" {
		t.Errorf("expected %q, got %q", "refresh-123", opened)
	}
}

func TestKMSEncryptor_WrongDevice(t *testing.T) {
	e := NewKMSEncryptor(&fakeKMS{}, "alias/doorlock-token-key")
	ctx := context.Background()

	sealed, _ := e.Encrypt(ctx, "front-door", "refresh-123")
	if _, err := e.Decrypt(ctx, "back-door", sealed); err == nil {
		t.Error("expected decrypt with another device ID to fail")
	}
}

func TestKMSEncryptor_BadBase64(t *testing.T) {
	e := NewKMSEncryptor(&fakeKMS{}, "alias/doorlock-token-key")
	if _, err := e.Decrypt(context.Background(), "front-door", "%%%"); err == nil {
		t.Error("expected decode error")
	}
}

func TestPlainEncryptor(t *testing.T) {
	e := NewPlainEncryptor()
	ctx := context.Background()

	sealed, _ := e.Encrypt(ctx, "front-door", "refresh-123")
	if sealed != "plain:refresh-123" {
		t.Errorf("expected tagged value, got %q", sealed)
	}
	opened, _ := e.Decrypt(ctx, "front-door", sealed)
	if opened != "refresh-123" {
		t.Errorf("expected %q, got %q", "refresh-123", opened)
	}
}
