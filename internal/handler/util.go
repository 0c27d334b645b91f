package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/jun/smartdoorlock/internal/rtdb"
)

// GetHeader returns the value of the named header, matching case-insensitively.
func GetHeader(req events.APIGatewayProxyRequest, name string) string {
	for k, v := range req.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func textResponse(status int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Body:       body,
		Headers: map[string]string{
			"Content-Type": "text/plain; charset=utf-8",
		},
	}
}

// statusFor maps a database error to the response status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, rtdb.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, rtdb.ErrInvalidPath):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
