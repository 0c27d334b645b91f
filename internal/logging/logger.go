// Package logging configures the shared logrus logger and carries request
// IDs through contexts.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// LogFormatter renders entries as
//
//	[2026-10-17 09:12:44] [1f0c2a9e] [info ] message device_id=front-door status=Ready
type LogFormatter struct{}

// logFieldOrder is the display order of known fields. Other fields are not
// printed.
var logFieldOrder = []string{
	"device_id", "type", "status", "code", "message",
	"method", "path", "status_code", "event", "duration", "error",
}

// Format renders a single log entry.
func (f *LogFormatter) Format(entry *log.Entry) ([]byte, error) {
	buffer := entry.Buffer
	if buffer == nil {
		buffer = &bytes.Buffer{}
	}

	reqID := "--------"
	if id, ok := entry.Data["request_id"].(string); ok && id != "" {
		reqID = id
	}

	level := entry.Level.String()
	if level == "warning" {
		level = "warn"
	}

	var fields []string
	for _, k := range logFieldOrder {
		if v, ok := entry.Data[k]; ok {
			fields = append(fields, fmt.Sprintf("%s=%v", k, v))
		}
	}
	var fieldsStr string
	if len(fields) > 0 {
		fieldsStr = " " + strings.Join(fields, " ")
	}

	fmt.Fprintf(buffer, "[%s] [%s] [%-5s] %s%s\n",
		entry.Time.Format("2006-01-02 15:04:05"),
		reqID,
		level,
		strings.TrimRight(entry.Message, "\r\n"),
		fieldsStr,
	)
	return buffer.Bytes(), nil
}

// Setup installs LogFormatter on the standard logger, writing to w (stderr
// when nil) at the given level. An unknown level falls back to info.
func Setup(level string, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	log.SetOutput(w)
	log.SetFormatter(&LogFormatter{})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.SetLevel(log.InfoLevel)
		log.Warnf("unknown log level %q, using info", level)
		return
	}
	log.SetLevel(lvl)
}
