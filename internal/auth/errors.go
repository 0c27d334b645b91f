package auth

import (
	"errors"

	"github.com/jun/smartdoorlock/internal/token"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// errorInfo maps err to the code/message pair reported with StatusError.
// Codes are HTTP status codes when the failure came from a server, -1
// otherwise.
func errorInfo(err error) *token.ErrorInfo {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error()
		}
		return &token.ErrorInfo{Code: apiErr.Code, Message: msg}
	}

	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		info := &token.ErrorInfo{Code: -1, Message: rErr.ErrorCode}
		if rErr.Response != nil {
			info.Code = rErr.Response.StatusCode
		}
		if m := gjson.GetBytes(rErr.Body, "error.message"); m.Exists() {
			info.Message = m.String()
		}
		if info.Message == "" {
			info.Message = rErr.Error()
		}
		return info
	}

	return &token.ErrorInfo{Code: -1, Message: err.Error()}
}
