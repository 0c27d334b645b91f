package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jun/smartdoorlock/internal/credentials"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// DefaultRefreshURL is the secure token endpoint that exchanges a refresh
// token for a new ID token.
const DefaultRefreshURL = "https://securetoken.googleapis.com/v1/token"

var serviceAccountScopes = []string{
	"https://www.googleapis.com/auth/firebase.database",
	"https://www.googleapis.com/auth/userinfo.email",
}

// refreshConfig returns an oauth2 config whose token endpoint is the secure
// token service. The service identifies the project by API key only.
func refreshConfig(refreshURL, apiKey string) *oauth2.Config {
	return &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  refreshURL + "?key=" + apiKey,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// signIn exchanges the email/password pair for an ID token.
func signIn(ctx context.Context, creds credentials.Credentials, opts ...option.ClientOption) (*oauth2.Token, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(creds.APIKey)}, opts...)
	svc, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity client: %w", err)
	}

	resp, err := svc.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             creds.UserEmail,
		Password:          creds.UserPassword,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to sign in %s: %w", creds.UserEmail, err)
	}

	tok := &oauth2.Token{
		AccessToken:  resp.IdToken,
		TokenType:    "Bearer",
		RefreshToken: resp.RefreshToken,
	}
	if resp.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return tok.WithExtra(map[string]any{"id_token": resp.IdToken}), nil
}

// idToken returns the ID token carried by tok. Refresh responses put it in
// the id_token field; sign-in tokens carry it as the access token as well.
func idToken(tok *oauth2.Token) string {
	if tok == nil {
		return ""
	}
	if s, ok := tok.Extra("id_token").(string); ok && s != "" {
		return s
	}
	return tok.AccessToken
}

func serviceAccountSource(ctx context.Context, keyJSON []byte) (oauth2.TokenSource, error) {
	conf, err := google.JWTConfigFromJSON(keyJSON, serviceAccountScopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account: %w", err)
	}
	return conf.TokenSource(ctx), nil
}
