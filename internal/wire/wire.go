//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"app-builder-ai-api/internal/application/appgen"
	"app-builder-ai-api/internal/config"
	"app-builder-ai-api/internal/infrastructure/llm"
	"app-builder-ai-api/internal/interfaces/http/handler"
	"app-builder-ai-api/internal/interfaces/http/router"
	"app-builder-ai-api/internal/workflow/port"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RedisSet,
		GenerationSet,
		RouterSet,
	)
	return nil, nil, nil
}

// RedisSet Redis 及其派生组件；Redis 未启用或不可达时各组件为 nil
var RedisSet = wire.NewSet(
	ProvideRedisClientOptional,
	ProvideRateLimiter,
	ProvideHealthChecker,
	ProvideBuildSnapshotStore,
)

// GenerationSet 生成工作流
var GenerationSet = wire.NewSet(
	llm.NewEinoFactory,
	wire.Bind(new(port.ChatModelFactory), new(*llm.EinoFactory)),
	ProvideComposer,
	appgen.NewBuildGenerator,
	appgen.NewChatGenerator,
	wire.Bind(new(handler.AppBuilder), new(*appgen.BuildGenerator)),
	wire.Bind(new(handler.ChatResponder), new(*appgen.ChatGenerator)),
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideHealthHandler,
	handler.NewBuildHandler,
	handler.NewChatHandler,
	handler.NewProjectBuildHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)
