//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"realty_notify/internal/app"
	"realty_notify/internal/config"
	"realty_notify/internal/http"
	"realty_notify/internal/http/controller"
	"realty_notify/internal/logging"
	"realty_notify/internal/presence"
	"realty_notify/internal/queue/rabbitmq"
	"realty_notify/internal/service/notify"
	"realty_notify/internal/store"
	"realty_notify/internal/ws"
)

func InitializeApp(cfg *config.Config) (*app.App, func(), error) {
	wire.Build(
		logging.New,
		store.NewStore,
		store.NotificationRepository,
		store.BrokerRepository,
		presence.NewRegistry,
		notify.NewService,
		ws.NewHandler,
		controller.NewHandler,
		http.NewRouter,
		rabbitmq.NewConsumer,
		rabbitmq.NewPublisher,
		app.NewApp,
	)
	return &app.App{}, nil, nil
}
