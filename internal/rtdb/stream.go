package rtdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/r3labs/sse/v2"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"gopkg.in/cenkalti/backoff.v1"
)

const (
	maxEventSize = 1 << 20
	maxErrorBody = 4096
)

// StreamEvent is a change notification received on a stream.
type StreamEvent struct {
	// Event is "put" or "patch".
	Event  string
	Result *Result
}

// Stream listens for changes at p and calls fn for every put/patch event
// until ctx is done or the server ends the stream. fn runs on the calling
// goroutine. The stream is not reopened; callers decide whether to retry.
func (c *Client) Stream(ctx context.Context, p string, fn func(StreamEvent)) error {
	p, err := normalizePath(p)
	if err != nil {
		return err
	}
	u, err := c.url(ctx, p)
	if err != nil {
		return err
	}

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	client := sse.NewClient(u, sse.ClientMaxBufferSize(maxEventSize))
	client.Connection = c.streamClient
	client.ReconnectStrategy = &backoff.StopBackOff{}
	client.ResponseValidator = validateStream

	log.WithField("path", p).Debug("rtdb stream opening")

	// Set when the server ends the stream with cancel or auth_revoked.
	var stopErr error
	err = client.SubscribeRawWithContext(streamCtx, func(msg *sse.Event) {
		if stopErr != nil {
			return
		}
		if err := dispatch(p, string(msg.Event), string(msg.Data), fn); err != nil {
			stopErr = err
			cancel()
		}
	})

	switch {
	case stopErr != nil:
		return stopErr
	case ctx.Err() != nil:
		return ctx.Err()
	case err != nil:
		return fmt.Errorf("rtdb stream %s: %w", p, err)
	}
	return ErrStreamClosed
}

// validateStream turns a non-2xx stream response into an *Error.
func validateStream(_ *sse.Client, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return newError(resp.StatusCode, body)
}

func dispatch(streamPath, event, data string, fn func(StreamEvent)) error {
	switch event {
	case "put", "patch":
		payload := gjson.Parse(data)
		eventPath := path.Join(streamPath, payload.Get("path").String())
		fn(StreamEvent{
			Event:  event,
			Result: NewResult(eventPath, []byte(payload.Get("data").Raw)),
		})
	case "cancel":
		return ErrStreamCanceled
	case "auth_revoked":
		return ErrAuthRevoked
	case "", "keep-alive":
	default:
		log.WithField("event", event).Debug("ignoring unknown stream event")
	}
	return nil
}
