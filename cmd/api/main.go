package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jun/smartdoorlock/internal/app"
	"github.com/jun/smartdoorlock/internal/config"
	"github.com/jun/smartdoorlock/internal/logging"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	logging.Setup(cfg.LogLevel, nil)

	application, err := app.NewApp(context.Background(), cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize")
	}
	lambda.Start(application.HandleRequest)
}
