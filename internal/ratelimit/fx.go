package ratelimit

import "go.uber.org/fx"

var Module = fx.Module("rate.limit",
	fx.Provide(NewRedisClient),
	fx.Provide(
		fx.Annotate(NewRequestLimiter, fx.As(new(Limiter))),
	),
	fx.Provide(NewLocker),
)
