package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/jun/smartdoorlock/internal/logging"
	"github.com/jun/smartdoorlock/internal/token"
	"golang.org/x/oauth2"
)

// TokenProvider is the part of auth.Manager the token endpoint needs.
type TokenProvider interface {
	Info() token.Info
	Token(ctx context.Context) (*oauth2.Token, error)
}

// TokenHandler reports the credential status.
type TokenHandler struct {
	provider TokenProvider
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(provider TokenProvider) *TokenHandler {
	return &TokenHandler{provider: provider}
}

// Status refreshes the credential if needed and returns the status line.
// A failed refresh still answers 200; the line carries the Error status.
func (h *TokenHandler) Status(ctx context.Context, _ events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if _, err := h.provider.Token(ctx); err != nil {
		logging.FromContext(ctx).WithError(err).Warn("token not available")
	}

	var b strings.Builder
	token.PrintStatus(&b, h.provider.Info())
	return textResponse(http.StatusOK, b.String()), nil
}
