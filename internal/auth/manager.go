// Package auth obtains and refreshes the credential used for database
// requests, reporting every lifecycle transition as a token.Info.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/jun/smartdoorlock/internal/credentials"
	"github.com/jun/smartdoorlock/internal/token"
	"github.com/jun/smartdoorlock/internal/tokenstore"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

var (
	// ErrNoCredentials is returned when neither a database secret, a service
	// account nor an email/password pair is configured.
	ErrNoCredentials = errors.New("no database credentials configured")

	// ErrNotStarted is returned by Token before Start was called.
	ErrNotStarted = errors.New("auth manager not started")
)

// Manager owns the database credential of one device.
//
// Transitions are reported to the callback synchronously and in order while
// the manager's lock is held; callbacks must not call back into the Manager.
type Manager struct {
	creds        credentials.Credentials
	deviceID     string
	callback     token.Callback
	store        *tokenstore.Store
	identityOpts []option.ClientOption
	refreshURL   string
	httpClient   *http.Client

	mu      sync.Mutex
	started bool
	info    token.Info
	src     oauth2.TokenSource
	tok     *oauth2.Token
	claims  *Claims
}

// Option configures a Manager.
type Option func(*Manager)

// WithCallback sets the token status callback.
func WithCallback(cb token.Callback) Option {
	return func(m *Manager) { m.callback = cb }
}

// WithStore persists refresh tokens across restarts.
func WithStore(s *tokenstore.Store) Option {
	return func(m *Manager) { m.store = s }
}

// WithDeviceID sets the key the refresh token is stored under.
func WithDeviceID(id string) Option {
	return func(m *Manager) { m.deviceID = id }
}

// WithIdentityOptions adds client options for the sign-in API.
func WithIdentityOptions(opts ...option.ClientOption) Option {
	return func(m *Manager) { m.identityOpts = append(m.identityOpts, opts...) }
}

// WithRefreshURL overrides the refresh token endpoint.
func WithRefreshURL(u string) Option {
	return func(m *Manager) { m.refreshURL = u }
}

// WithHTTPClient sets the client used for refresh and service account
// token requests.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) { m.httpClient = c }
}

// NewManager creates a Manager for creds. The credential type is chosen from
// what is set: database secret, then service account, then email/password.
func NewManager(creds credentials.Credentials, opts ...Option) *Manager {
	m := &Manager{
		creds:      creds,
		deviceID:   "default",
		refreshURL: DefaultRefreshURL,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.info = token.Info{Type: typeFor(creds), Status: token.StatusUninitialized}
	return m
}

func typeFor(c credentials.Credentials) token.Type {
	switch {
	case c.DatabaseSecret != "":
		return token.TypeLegacy
	case c.ServiceAccountJSON != "":
		return token.TypeOAuth2Access
	case c.UserEmail != "" && c.UserPassword != "":
		return token.TypeIDToken
	default:
		return token.TypeUndefined
	}
}

// Info returns the current lifecycle snapshot.
func (m *Manager) Info() token.Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.info
}

// Claims returns the identity carried by the current ID token, or nil for
// other credential types.
func (m *Manager) Claims() *Claims {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.claims
}

// Start obtains the first credential. When it fails, later Token calls retry
// the same sequence.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.started = true
	m.report(token.StatusUninitialized, nil)
	return m.start(ctx)
}

// start runs the acquisition sequence for the credential type and reports
// Ready or Error. Callers hold m.mu.
func (m *Manager) start(ctx context.Context) error {
	// Token sources outlive the caller's context.
	srcCtx := m.clientContext(context.WithoutCancel(ctx))

	var err error
	switch m.info.Type {
	case token.TypeLegacy:
		m.tok = &oauth2.Token{AccessToken: m.creds.DatabaseSecret, TokenType: "legacy"}
	case token.TypeOAuth2Access:
		err = m.startServiceAccount(srcCtx)
	case token.TypeIDToken:
		err = m.startIDToken(ctx, srcCtx)
	default:
		err = ErrNoCredentials
	}
	if err != nil {
		m.report(token.StatusError, err)
		return err
	}
	m.report(token.StatusReady, nil)
	return nil
}

func (m *Manager) startServiceAccount(ctx context.Context) error {
	m.report(token.StatusOnSigning, nil)
	src, err := serviceAccountSource(ctx, []byte(m.creds.ServiceAccountJSON))
	if err != nil {
		return err
	}

	m.report(token.StatusOnRequest, nil)
	tok, err := src.Token()
	if err != nil {
		return fmt.Errorf("failed to get service account token: %w", err)
	}
	m.src, m.tok = src, tok
	return nil
}

func (m *Manager) startIDToken(ctx, srcCtx context.Context) error {
	conf := refreshConfig(m.refreshURL, m.creds.APIKey)

	if rt := m.storedRefreshToken(ctx); rt != "" {
		m.report(token.StatusOnRefresh, nil)
		src := conf.TokenSource(srcCtx, &oauth2.Token{RefreshToken: rt})
		tok, err := src.Token()
		if err == nil {
			m.setIDToken(ctx, src, tok)
			return nil
		}
		log.WithError(err).WithField("device_id", m.deviceID).Warn("stored refresh token rejected, signing in again")
	}

	m.report(token.StatusOnRequest, nil)
	tok, err := signIn(ctx, m.creds, m.identityOpts...)
	if err != nil {
		return err
	}
	m.setIDToken(ctx, conf.TokenSource(srcCtx, tok), tok)
	return nil
}

func (m *Manager) storedRefreshToken(ctx context.Context) string {
	if m.store == nil {
		return ""
	}
	rt, err := m.store.RefreshToken(ctx, m.deviceID)
	if err != nil {
		if !errors.Is(err, tokenstore.ErrNotFound) {
			log.WithError(err).WithField("device_id", m.deviceID).Warn("failed to load stored refresh token")
		}
		return ""
	}
	return rt
}

// setIDToken installs tok and persists its refresh token. Callers hold m.mu.
func (m *Manager) setIDToken(ctx context.Context, src oauth2.TokenSource, tok *oauth2.Token) {
	m.src, m.tok = src, tok

	claims, err := parseClaims(idToken(tok))
	if err != nil {
		log.WithError(err).Debug("id token claims unavailable")
	}
	m.claims = claims

	if m.store == nil || tok.RefreshToken == "" {
		return
	}
	var localID string
	if claims != nil {
		localID = claims.UID
	}
	if err := m.store.Save(ctx, m.deviceID, int(token.TypeIDToken), localID, tok.RefreshToken); err != nil {
		log.WithError(err).WithField("device_id", m.deviceID).Warn("failed to persist refresh token")
	}
}

// Token returns a valid credential, refreshing it when it has expired. If
// Start failed, the start sequence is run again.
func (m *Manager) Token(ctx context.Context) (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tok == nil {
		if !m.started {
			return nil, ErrNotStarted
		}
		if err := m.start(ctx); err != nil {
			return nil, err
		}
		return m.tok, nil
	}
	if m.tok.Valid() || m.src == nil {
		return m.tok, nil
	}

	m.report(token.StatusOnRefresh, nil)
	tok, err := m.src.Token()
	if err != nil {
		err = fmt.Errorf("failed to refresh token: %w", err)
		m.report(token.StatusError, err)
		return nil, err
	}
	if m.info.Type == token.TypeIDToken {
		m.setIDToken(ctx, m.src, tok)
	} else {
		m.tok = tok
	}
	m.report(token.StatusReady, nil)
	return tok, nil
}

// QueryParam returns the query parameter that authorizes a database request.
func (m *Manager) QueryParam(ctx context.Context) (string, string, error) {
	tok, err := m.Token(ctx)
	if err != nil {
		return "", "", err
	}
	switch m.Info().Type {
	case token.TypeOAuth2Access:
		return "access_token", tok.AccessToken, nil
	case token.TypeIDToken:
		return "auth", idToken(tok), nil
	default:
		return "auth", tok.AccessToken, nil
	}
}

func (m *Manager) clientContext(ctx context.Context) context.Context {
	if m.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
}

// report records a transition and notifies the callback. Callers hold m.mu.
func (m *Manager) report(status token.Status, err error) {
	m.info.Status = status
	m.info.Err = nil
	entry := log.WithFields(log.Fields{
		"device_id": m.deviceID,
		"type":      token.TypeName(m.info),
		"status":    token.StatusName(m.info),
	})
	if err != nil {
		m.info.Err = errorInfo(err)
		entry.WithFields(log.Fields{
			"code":    m.info.Err.Code,
			"message": m.info.Err.Message,
		}).Error("token error")
	} else {
		entry.Debug("token status")
	}
	if m.callback != nil {
		m.callback(m.info)
	}
}
