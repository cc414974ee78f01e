package main

import (
	"context"
	"log/slog"
	"os"

	"go.uber.org/fx"

	"islandpost/config"
	"islandpost/internal/delivery"
	"islandpost/internal/delivery/http"
	"islandpost/internal/delivery/http/middleware"
	"islandpost/internal/delivery/http/router/handler"
	sharedmiddleware "islandpost/internal/delivery/middleware"
	"islandpost/internal/infra/auth"
	logs "islandpost/internal/infra/log"
	"islandpost/internal/infra/oauth/apple"
	"islandpost/internal/infra/oauth/google"
	"islandpost/internal/infra/oauth/kakao"
	"islandpost/internal/infra/persistence/postgres"
	"islandpost/internal/usecase/impl"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewMemberRepository,
			postgres.NewRefreshTokenRepository,
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewJWTService,
			fx.Annotate(kakao.NewLoginStrategy, fx.ResultTags(`group:"loginStrategies"`)),
			fx.Annotate(google.NewLoginStrategy, fx.ResultTags(`group:"loginStrategies"`)),
			fx.Annotate(apple.NewLoginStrategy, fx.ResultTags(`group:"loginStrategies"`)),
			fx.Annotate(kakao.NewUnlinkStrategy, fx.ResultTags(`group:"unlinkStrategies"`)),
			fx.Annotate(google.NewUnlinkStrategy, fx.ResultTags(`group:"unlinkStrategies"`)),
			fx.Annotate(apple.NewUnlinkStrategy, fx.ResultTags(`group:"unlinkStrategies"`)),
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAuthService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewErrorMiddleware,
			sharedmiddleware.NewRequestIDMiddleware,
			sharedmiddleware.NewLoggerMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
