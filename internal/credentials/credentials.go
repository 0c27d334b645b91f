// Package credentials holds the network and database credentials a device
// needs at bring-up.
//
// The constants are placeholders and must be replaced by the integrator,
// either here or through the secret resolvers (SSM or environment).
package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/jun/smartdoorlock/internal/secret"
)

// Placeholder values. Replace before deployment.
const (
	WiFiSSID     = "your_wifi_name"
	WiFiPassword = "your_wifi_password"

	APIKey       = "your_firebase_api_key"
	DatabaseURL  = "your_firebase_database_url"
	UserEmail    = "your_firebase_user_email"
	UserPassword = "your_firebase_user_password"
)

// Parameter names used to resolve each field.
const (
	ParamWiFiSSID           = "/doorlock/wifi-ssid"
	ParamWiFiPassword       = "/doorlock/wifi-password"
	ParamAPIKey             = "/doorlock/api-key"
	ParamDatabaseURL        = "/doorlock/database-url"
	ParamUserEmail          = "/doorlock/user-email"
	ParamUserPassword       = "/doorlock/user-password"
	ParamDatabaseSecret     = "/doorlock/database-secret"
	ParamServiceAccountJSON = "/doorlock/service-account-json"
)

// Credentials is the resolved credential set.
type Credentials struct {
	WiFiSSID     string
	WiFiPassword string
	APIKey       string
	DatabaseURL  string
	UserEmail    string
	UserPassword string

	// DatabaseSecret selects legacy token auth when set.
	DatabaseSecret string
	// ServiceAccountJSON selects OAuth2 access token auth when set.
	ServiceAccountJSON string
}

// Placeholder returns the placeholder table.
func Placeholder() Credentials {
	return Credentials{
		WiFiSSID:     WiFiSSID,
		WiFiPassword: WiFiPassword,
		APIKey:       APIKey,
		DatabaseURL:  DatabaseURL,
		UserEmail:    UserEmail,
		UserPassword: UserPassword,
	}
}

type field struct {
	param       string
	name        string
	placeholder string
	ptr         func(*Credentials) *string
}

var fields = []field{
	{ParamWiFiSSID, "WIFI_SSID", WiFiSSID, func(c *Credentials) *string { return &c.WiFiSSID }},
	{ParamWiFiPassword, "WIFI_PASSWORD", WiFiPassword, func(c *Credentials) *string { return &c.WiFiPassword }},
	{ParamAPIKey, "API_KEY", APIKey, func(c *Credentials) *string { return &c.APIKey }},
	{ParamDatabaseURL, "DATABASE_URL", DatabaseURL, func(c *Credentials) *string { return &c.DatabaseURL }},
	{ParamUserEmail, "USER_EMAIL", UserEmail, func(c *Credentials) *string { return &c.UserEmail }},
	{ParamUserPassword, "USER_PASSWORD", UserPassword, func(c *Credentials) *string { return &c.UserPassword }},
	{ParamDatabaseSecret, "DATABASE_SECRET", "", func(c *Credentials) *string { return &c.DatabaseSecret }},
	{ParamServiceAccountJSON, "SERVICE_ACCOUNT_JSON", "", func(c *Credentials) *string { return &c.ServiceAccountJSON }},
}

// Resolve looks every field up through r. Fields r does not know keep their
// placeholder (or stay empty for the optional ones); any other resolver
// error is returned.
func Resolve(ctx context.Context, r secret.Resolver) (Credentials, error) {
	creds := Placeholder()
	for _, f := range fields {
		val, err := r.GetSecret(ctx, f.param)
		if err != nil {
			if errors.Is(err, secret.ErrNotFound) {
				continue
			}
			return creds, fmt.Errorf("failed to resolve %s: %w", f.name, err)
		}
		*f.ptr(&creds) = val
	}
	return creds, nil
}

// Placeholders lists the fields that still hold their placeholder value.
func (c Credentials) Placeholders() []string {
	var names []string
	for _, f := range fields {
		if f.placeholder == "" {
			continue
		}
		if *f.ptr(&c) == f.placeholder {
			names = append(names, f.name)
		}
	}
	return names
}
