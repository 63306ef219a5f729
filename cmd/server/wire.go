// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"woodcraft_backend/internal/app"
	"woodcraft_backend/internal/auth"
	"woodcraft_backend/internal/config"
	"woodcraft_backend/internal/health"
	"woodcraft_backend/internal/jobs"
	"woodcraft_backend/internal/mail"
	"woodcraft_backend/internal/order"
	"woodcraft_backend/internal/platform/database"
	"woodcraft_backend/internal/platform/logger"
	"woodcraft_backend/internal/post"
	"woodcraft_backend/internal/shared"
	"woodcraft_backend/internal/user"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		logger.New,
		database.NewGORM,
		provideFileStorage,
		provideCleanup,
		mail.NewSMTPSender,

		// Core User Services
		user.NewGORMRepository,
		user.NewService,
		wire.Bind(new(shared.Service), new(*user.ServiceImplementation)),

		// Auth
		auth.NewJWTService,
		wire.Bind(new(shared.TokenService), new(*auth.JWTService)),
		auth.NewOAuthService,
		auth.NewHandler,

		// Orders
		order.NewGORMRepository,
		order.NewService,
		order.NewHandler,

		// Service Posts
		post.NewGORMRepository,
		post.NewService,
		post.NewHandler,

		// Docs and Health
		provideDocsHandler,
		health.NewHandler,

		// Jobs
		jobs.NewUploadSweepJob,

		// Application Layer
		app.NewServer,
	)
	return nil, nil, nil
}
