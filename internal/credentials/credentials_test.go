package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/jun/smartdoorlock/internal/secret"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingResolver struct{}

func (failingResolver) GetSecret(context.Context, string) (string, error) {
	return "", errors.New("ssm unavailable")
}

func TestPlaceholder(t *testing.T) {
	c := Placeholder()

	assert.Equal(t, "your_wifi_name", c.WiFiSSID)
	assert.Equal(t, "your_wifi_password", c.WiFiPassword)
	assert.Equal(t, "your_firebase_api_key", c.APIKey)
	assert.Equal(t, "your_firebase_database_url", c.DatabaseURL)
	assert.Equal(t, "your_firebase_user_email", c.UserEmail)
	assert.Equal(t, "your_firebase_user_password", c.UserPassword)
	assert.Empty(t, c.DatabaseSecret)
	assert.Empty(t, c.ServiceAccountJSON)

	assert.Equal(t, []string{
		"WIFI_SSID", "WIFI_PASSWORD", "API_KEY", "DATABASE_URL", "USER_EMAIL", "USER_PASSWORD",
	}, c.Placeholders())
}

func TestResolve_PartialOverride(t *testing.T) {
	r := secret.StaticResolver{
		ParamAPIKey:      "AIza-real",
		ParamDatabaseURL: "https://door-default-rtdb.firebaseio.com",
		"USER_EMAIL":     "door@example.com",
	}

	c, err := Resolve(context.Background(), r)
	require.NoError(t, err)

	assert.Equal(t, "AIza-real", c.APIKey)
	assert.Equal(t, "https://door-default-rtdb.firebaseio.com", c.DatabaseURL)
	assert.Equal(t, "door@example.com", c.UserEmail)
	assert.Equal(t, UserPassword, c.UserPassword)
	assert.Equal(t, []string{"WIFI_SSID", "WIFI_PASSWORD", "USER_PASSWORD"}, c.Placeholders())
}

func TestResolve_OptionalFields(t *testing.T) {
	r := secret.StaticResolver{ParamDatabaseSecret: "legacy-secret"}

	c, err := Resolve(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "legacy-secret", c.DatabaseSecret)
	assert.Empty(t, c.ServiceAccountJSON)
}

func TestResolve_HardError(t *testing.T) {
	_, err := Resolve(context.Background(), failingResolver{})
	assert.ErrorContains(t, err, "WIFI_SSID")
}

func TestPlaceholders_NoneLeft(t *testing.T) {
	c := Credentials{
		WiFiSSID: "home", WiFiPassword: "pw", APIKey: "k",
		DatabaseURL: "u", UserEmail: "e", UserPassword: "p",
	}
	assert.Empty(t, c.Placeholders())
}
