// Package secret looks up credential values by parameter name from SSM
// Parameter Store, environment variables or a static table.
//
// Parameter names use the SSM path form ("/doorlock/api-key"). The
// environment form is the upper-cased last segment ("API_KEY").
package secret

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// ErrNotFound is returned when a resolver has no value for a name.
var ErrNotFound = errors.New("secret not found")

// SSMClient is the subset of *ssm.Client methods used by SSMResolver.
type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Resolver retrieves secret values by name.
type Resolver interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// SSMResolver fetches secrets from AWS Systems Manager Parameter Store.
type SSMResolver struct {
	client SSMClient
}

// NewSSMResolver returns a Resolver backed by SSM Parameter Store.
func NewSSMResolver(client SSMClient) *SSMResolver {
	return &SSMResolver{client: client}
}

// GetSecret retrieves a SecureString parameter with decryption.
func (r *SSMResolver) GetSecret(ctx context.Context, name string) (string, error) {
	out, err := r.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var notFound *ssmtypes.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", fmt.Errorf("ssm parameter %q: %w", name, ErrNotFound)
		}
		return "", fmt.Errorf("ssm get parameter %q: %w", name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("ssm parameter %q has no value: %w", name, ErrNotFound)
	}
	return *out.Parameter.Value, nil
}

// EnvResolver fetches secrets from environment variables.
type EnvResolver struct {
	lookup func(string) (string, bool)
}

// NewEnvResolver returns a Resolver that reads from the process environment.
func NewEnvResolver() *EnvResolver {
	return &EnvResolver{lookup: os.LookupEnv}
}

// GetSecret reads the environment variable derived from name.
func (r *EnvResolver) GetSecret(_ context.Context, name string) (string, error) {
	envName := EnvName(name)
	val, ok := r.lookup(envName)
	if !ok || strings.TrimSpace(val) == "" {
		return "", fmt.Errorf("environment variable %q (from param %q): %w", envName, name, ErrNotFound)
	}
	return strings.TrimSpace(val), nil
}

// StaticResolver serves secrets from a fixed table keyed by parameter name.
// Keys may be given in either the parameter or the environment form.
type StaticResolver map[string]string

// GetSecret returns the table entry for name.
func (r StaticResolver) GetSecret(_ context.Context, name string) (string, error) {
	if v, ok := r[name]; ok && v != "" {
		return v, nil
	}
	if v, ok := r[EnvName(name)]; ok && v != "" {
		return v, nil
	}
	return "", fmt.Errorf("static secret %q: %w", name, ErrNotFound)
}

// ChainResolver tries each resolver in order and returns the first value
// found. Errors other than ErrNotFound stop the chain.
type ChainResolver []Resolver

// GetSecret walks the chain.
func (c ChainResolver) GetSecret(ctx context.Context, name string) (string, error) {
	for _, r := range c {
		val, err := r.GetSecret(ctx, name)
		if err == nil {
			return val, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return "", fmt.Errorf("secret %q: %w", name, ErrNotFound)
}

// EnvName converts a parameter name to its environment variable name.
// "/doorlock/api-key" -> "API_KEY"
// "/doorlock/database-url" -> "DATABASE_URL"
func EnvName(name string) string {
	parts := strings.Split(name, "/")
	last := parts[len(parts)-1]
	return strings.ToUpper(strings.ReplaceAll(last, "-", "_"))
}
