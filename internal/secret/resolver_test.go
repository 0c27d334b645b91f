package secret

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

type fakeSSMClient struct {
	params map[string]string
	err    error
}

func (f *fakeSSMClient) GetParameter(_ context.Context, input *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	val, ok := f.params[*input.Name]
	if !ok {
		return nil, &ssmtypes.ParameterNotFound{Message: aws.String("parameter not found: " + *input.Name)}
	}
	return &ssm.GetParameterOutput{
		Parameter: &ssmtypes.Parameter{
			Name:  input.Name,
			Value: aws.String(val),
		},
	}, nil
}

func TestSSMResolver_GetSecret_Success(t *testing.T) {
	client := &fakeSSMClient{
		params: map[string]string{
			"/doorlock/api-key": "AIza-test",
		},
	}
	resolver := NewSSMResolver(client)

	val, err := resolver.GetSecret(context.Background(), "/doorlock/api-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "AIza-test" {
		t.Fatalf("expected %q, got %q", "AIza-test", val)
	}
}

func TestSSMResolver_GetSecret_NotFound(t *testing.T) {
	resolver := NewSSMResolver(&fakeSSMClient{params: map[string]string{}})

	_, err := resolver.GetSecret(context.Background(), "/doorlock/nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSSMResolver_GetSecret_TransportError(t *testing.T) {
	resolver := NewSSMResolver(&fakeSSMClient{err: fmt.Errorf("throttled")})

	_, err := resolver.GetSecret(context.Background(), "/doorlock/api-key")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected a non-NotFound error, got %v", err)
	}
}

func TestEnvResolver_GetSecret_Success(t *testing.T) {
	t.Setenv("DATABASE_URL", "https://door-default-rtdb.firebaseio.com")

	val, err := NewEnvResolver().GetSecret(context.Background(), "/doorlock/database-url")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "https://door-default-rtdb.firebaseio.com" {
		t.Fatalf("unexpected value %q", val)
	}
}

func TestEnvResolver_GetSecret_NotSet(t *testing.T) {
	r := &EnvResolver{lookup: func(string) (string, bool) { return "", false }}

	_, err := r.GetSecret(context.Background(), "/doorlock/user-password")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStaticResolver(t *testing.T) {
	r := StaticResolver{
		"/doorlock/user-email": "door@example.com",
		"USER_PASSWORD":        "hunter2",
	}

	if v, err := r.GetSecret(context.Background(), "/doorlock/user-email"); err != nil || v != "door@example.com" {
		t.Errorf("param form: got %q, %v", v, err)
	}
	if v, err := r.GetSecret(context.Background(), "/doorlock/user-password"); err != nil || v != "hunter2" {
		t.Errorf("env form: got %q, %v", v, err)
	}
	if _, err := r.GetSecret(context.Background(), "/doorlock/api-key"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestChainResolver(t *testing.T) {
	chain := ChainResolver{
		StaticResolver{"/doorlock/api-key": "from-static"},
		NewSSMResolver(&fakeSSMClient{params: map[string]string{
			"/doorlock/api-key":      "from-ssm",
			"/doorlock/database-url": "db-from-ssm",
		}}),
	}
	ctx := context.Background()

	if v, _ := chain.GetSecret(ctx, "/doorlock/api-key"); v != "from-static" {
		t.Errorf("expected first resolver to win, got %q", v)
	}
	if v, _ := chain.GetSecret(ctx, "/doorlock/database-url"); v != "db-from-ssm" {
		t.Errorf("expected fallthrough to ssm, got %q", v)
	}
	if _, err := chain.GetSecret(ctx, "/doorlock/wifi-ssid"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestChainResolver_StopsOnHardError(t *testing.T) {
	chain := ChainResolver{
		NewSSMResolver(&fakeSSMClient{err: fmt.Errorf("access denied")}),
		StaticResolver{"/doorlock/api-key": "never-reached"},
	}

	_, err := chain.GetSecret(context.Background(), "/doorlock/api-key")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected hard error to stop the chain, got %v", err)
	}
}

func TestEnvName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/doorlock/wifi-ssid", "WIFI_SSID"},
		{"/doorlock/wifi-password", "WIFI_PASSWORD"},
		{"/doorlock/api-key", "API_KEY"},
		{"/doorlock/database-url", "DATABASE_URL"},
		{"/doorlock/user-email", "USER_EMAIL"},
		{"/doorlock/user-password", "USER_PASSWORD"},
		{"API_KEY", "API_KEY"},
	}

	for _, tc := range tests {
		got := EnvName(tc.input)
		if got != tc.expected {
			t.Errorf("EnvName(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}
