// Package app wires configuration, secrets, auth and the database client
// into the API Gateway request router.
package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	log "github.com/sirupsen/logrus"

	"github.com/jun/smartdoorlock/internal/auth"
	"github.com/jun/smartdoorlock/internal/config"
	"github.com/jun/smartdoorlock/internal/credentials"
	"github.com/jun/smartdoorlock/internal/crypto"
	"github.com/jun/smartdoorlock/internal/handler"
	"github.com/jun/smartdoorlock/internal/logging"
	"github.com/jun/smartdoorlock/internal/rtdb"
	"github.com/jun/smartdoorlock/internal/secret"
	"github.com/jun/smartdoorlock/internal/token"
	"github.com/jun/smartdoorlock/internal/tokenstore"
)

// Services are the long-lived dependencies shared by the API and the CLI.
type Services struct {
	Config      *config.Config
	Resolver    secret.Resolver
	Credentials credentials.Credentials
	Auth        *auth.Manager
	DB          *rtdb.Client
}

// NewServices resolves credentials and builds the auth manager and database
// client. It does not start the manager. cb may be nil.
func NewServices(ctx context.Context, cfg *config.Config, cb token.Callback) (*Services, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	var ssmClient secret.SSMClient
	if !cfg.DevMode {
		ssmClient = ssm.NewFromConfig(awsCfg)
	}
	resolver := cfg.Resolver(ssmClient)

	creds, err := credentials.Resolve(ctx, resolver)
	if err != nil {
		return nil, err
	}
	if missing := creds.Placeholders(); len(missing) > 0 {
		log.WithField("fields", strings.Join(missing, ",")).Warn("credentials still hold placeholder values")
	}

	// Refresh tokens stay in memory in DEV_MODE.
	var store *tokenstore.Store
	if cfg.DevMode {
		log.Info("using in-memory token store with plain encryptor (DEV_MODE)")
		store = tokenstore.New(nil, cfg.DeviceTokensTable, crypto.NewPlainEncryptor())
	} else {
		store = tokenstore.New(
			dynamodb.NewFromConfig(awsCfg),
			cfg.DeviceTokensTable,
			crypto.NewKMSEncryptor(kms.NewFromConfig(awsCfg), cfg.KMSKeyID),
		)
	}

	opts := []auth.Option{auth.WithStore(store), auth.WithDeviceID(cfg.DeviceID)}
	if cb != nil {
		opts = append(opts, auth.WithCallback(cb))
	}
	manager := auth.NewManager(creds, opts...)

	return &Services{
		Config:      cfg,
		Resolver:    resolver,
		Credentials: creds,
		Auth:        manager,
		DB:          rtdb.NewClient(creds.DatabaseURL, manager),
	}, nil
}

// App routes API Gateway requests.
type App struct {
	tokenHandler     *handler.TokenHandler
	rtdbHandler      *handler.RTDBHandler
	apiGatewaySecret string
	devMode          bool
}

// New creates an App over already built dependencies.
func New(provider handler.TokenProvider, db handler.Database, apiGatewaySecret string, devMode bool) *App {
	return &App{
		tokenHandler:     handler.NewTokenHandler(provider),
		rtdbHandler:      handler.NewRTDBHandler(db),
		apiGatewaySecret: apiGatewaySecret,
		devMode:          devMode,
	}
}

// NewApp starts the auth manager and returns the App.
// A failed start is logged; the token endpoint keeps reporting the error.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	svc, err := NewServices(ctx, cfg, nil)
	if err != nil {
		return nil, err
	}
	if err := svc.Auth.Start(ctx); err != nil {
		log.WithError(err).Error("auth start failed, retrying on first token request")
	}

	apiGatewaySecret, err := svc.Resolver.GetSecret(ctx, cfg.APIGatewaySecretParam)
	if err != nil {
		log.WithError(err).Warn("failed to resolve API gateway secret")
	}
	if apiGatewaySecret == "" && !cfg.DevMode {
		return nil, fmt.Errorf("api gateway secret %s is required outside DEV_MODE", cfg.APIGatewaySecretParam)
	}

	return New(svc.Auth, svc.DB, apiGatewaySecret, cfg.DevMode), nil
}

// HandleRequest routes API Gateway requests to the appropriate handler.
func (app *App) HandleRequest(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := logging.NewRequestID()
	ctx = logging.WithRequestID(ctx, requestID)

	resp := app.route(ctx, req)
	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	resp.Headers["X-Request-Id"] = requestID

	logging.FromContext(ctx).WithFields(log.Fields{
		"method":      req.HTTPMethod,
		"path":        req.Path,
		"status_code": resp.StatusCode,
	}).Info("request")
	return resp, nil
}

func (app *App) route(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	method := req.HTTPMethod
	// Strip /api prefix if present (for CloudFront proxying)
	path := strings.TrimPrefix(req.Path, "/api")

	if path == "/healthz" && method == http.MethodGet {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Body: "ok"}
	}

	// Only CloudFront knows the origin secret.
	if !app.devMode && handler.GetHeader(req, "X-Origin-Verify") != app.apiGatewaySecret {
		logging.FromContext(ctx).Warn("missing or invalid X-Origin-Verify header")
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusForbidden,
			Body:       "Forbidden: Access denied",
		}
	}

	if req.PathParameters == nil {
		req.PathParameters = make(map[string]string)
	}

	if path == "/token" && method == http.MethodGet {
		return call(ctx, app.tokenHandler.Status, req)
	}

	if path == "/rtdb" || strings.HasPrefix(path, "/rtdb/") {
		req.PathParameters["path"] = strings.TrimPrefix(strings.TrimPrefix(path, "/rtdb"), "/")
		switch method {
		case http.MethodGet:
			return call(ctx, app.rtdbHandler.Get, req)
		case http.MethodPut:
			return call(ctx, app.rtdbHandler.Set, req)
		}
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusMethodNotAllowed,
			Body:       fmt.Sprintf("Method Not Allowed: %s %s", method, path),
		}
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusNotFound,
		Body:       fmt.Sprintf("Not Found: %s %s", method, path),
	}
}

type handlerFunc func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// call runs h, turning an error into a 500.
func call(ctx context.Context, h handlerFunc, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	resp, err := h(ctx, req)
	if err != nil {
		logging.FromContext(ctx).WithError(err).Error("handler error")
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError, Body: "Internal Server Error"}
	}
	return resp
}
