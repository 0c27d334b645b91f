package token

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeName(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{TypeLegacy, "Legacy token"},
		{TypeIDToken, "ID token"},
		{TypeUndefined, "Unknown"},
		{TypeCustom, "Unknown"},
		{TypeOAuth2Access, "Unknown"},
		{Type(42), "Unknown"},
		{Type(-1), "Unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TypeName(Info{Type: tt.typ}), "type %d", tt.typ)
	}
}

func TestStatusName(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusUninitialized, "Uninitialized"},
		{StatusOnSigning, "On signing"},
		{StatusOnRequest, "On request"},
		{StatusOnRefresh, "On refresh"},
		{StatusReady, "Ready"},
		{StatusError, "Error"},
		{Status(6), "Unknown"},
		{Status(-3), "Unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusName(Info{Status: tt.status}), "status %d", tt.status)
	}
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintStatus(&buf, Info{Type: TypeIDToken, Status: StatusReady})

	assert.Equal(t, "Token info: type = ID token, status = Ready\n", buf.String())
}

func TestPrintStatus_ErrorDetailNotPrinted(t *testing.T) {
	var buf bytes.Buffer
	PrintStatus(&buf, Info{
		Type:   TypeLegacy,
		Status: StatusError,
		Err:    &ErrorInfo{Code: 400, Message: "INVALID_PASSWORD"},
	})

	assert.Equal(t, "Token info: type = Legacy token, status = Error\n", buf.String())
}

func TestStatusCallback(t *testing.T) {
	var buf bytes.Buffer
	cb := StatusCallback(&buf)

	cb(Info{Type: TypeIDToken, Status: StatusUninitialized})
	cb(Info{Type: TypeIDToken, Status: StatusOnRequest})
	cb(Info{Type: Type(9), Status: Status(9)})

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"Token info: type = ID token, status = Uninitialized",
		"Token info: type = ID token, status = On request",
		"Token info: type = Unknown, status = Unknown",
	}, lines)
}
