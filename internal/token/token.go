// Package token reports the lifecycle of the database auth credential.
//
// The Type and Status values are produced by the auth manager and only read
// here. Both enumerations are open-ended: values this package does not know
// about are reported as "Unknown" instead of failing.
package token

import (
	"fmt"
	"io"
)

// Type is the kind of credential used to talk to the database.
type Type int

const (
	TypeUndefined Type = iota
	TypeLegacy
	TypeIDToken
	TypeCustom
	TypeOAuth2Access
)

// Status is the lifecycle state of the credential.
type Status int

const (
	StatusUninitialized Status = iota
	StatusOnSigning
	StatusOnRequest
	StatusOnRefresh
	StatusReady
	StatusError
)

// ErrorInfo carries the detail of a StatusError transition.
type ErrorInfo struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Info is a snapshot of the credential lifecycle.
type Info struct {
	Type   Type       `json:"type"`
	Status Status     `json:"status"`
	Err    *ErrorInfo `json:"error,omitempty"`
}

// Callback receives every lifecycle transition.
type Callback func(Info)

const unknown = "Unknown"

// TypeName returns the display name of the credential type.
func TypeName(info Info) string {
	switch info.Type {
	case TypeLegacy:
		return "Legacy token"
	case TypeIDToken:
		return "ID token"
	default:
		return unknown
	}
}

// StatusName returns the display name of the lifecycle status.
func StatusName(info Info) string {
	switch info.Status {
	case StatusUninitialized:
		return "Uninitialized"
	case StatusOnSigning:
		return "On signing"
	case StatusOnRequest:
		return "On request"
	case StatusOnRefresh:
		return "On refresh"
	case StatusReady:
		return "Ready"
	case StatusError:
		return "Error"
	default:
		return unknown
	}
}

// PrintStatus writes the one-line status report for info to w.
func PrintStatus(w io.Writer, info Info) {
	fmt.Fprintf(w, "Token info: type = %s, status = %s\n", TypeName(info), StatusName(info))
}

// StatusCallback returns a Callback that prints every transition to w.
func StatusCallback(w io.Writer) Callback {
	return func(info Info) {
		PrintStatus(w, info)
	}
}
