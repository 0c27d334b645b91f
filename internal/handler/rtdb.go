package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/jun/smartdoorlock/internal/logging"
	"github.com/jun/smartdoorlock/internal/rtdb"
)

// Database is the part of rtdb.Client the database endpoints need.
type Database interface {
	Get(ctx context.Context, p string) (*rtdb.Result, error)
	Set(ctx context.Context, p string, v any) (*rtdb.Result, error)
}

// RTDBHandler reads and writes database paths and answers with the printed
// result.
type RTDBHandler struct {
	db Database
}

// NewRTDBHandler creates a new RTDBHandler.
func NewRTDBHandler(db Database) *RTDBHandler {
	return &RTDBHandler{db: db}
}

// Get reads the path in PathParameters["path"].
func (h *RTDBHandler) Get(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	p := req.PathParameters["path"]
	res, err := h.db.Get(ctx, p)
	if err != nil {
		return h.fail(ctx, p, err), nil
	}
	return printed(res), nil
}

// Set writes the JSON body to the path in PathParameters["path"].
func (h *RTDBHandler) Set(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	p := req.PathParameters["path"]
	body := strings.TrimSpace(req.Body)
	if body == "" || !json.Valid([]byte(body)) {
		return textResponse(http.StatusBadRequest, "Invalid request body"), nil
	}

	res, err := h.db.Set(ctx, p, json.RawMessage(body))
	if err != nil {
		return h.fail(ctx, p, err), nil
	}
	return printed(res), nil
}

func (h *RTDBHandler) fail(ctx context.Context, p string, err error) events.APIGatewayProxyResponse {
	status := statusFor(err)
	logging.FromContext(ctx).WithError(err).WithField("path", p).Warn("database request failed")
	return textResponse(status, http.StatusText(status)+": "+err.Error())
}

func printed(res *rtdb.Result) events.APIGatewayProxyResponse {
	var b strings.Builder
	rtdb.PrintResult(&b, res)
	return textResponse(http.StatusOK, b.String())
}
