package observers

import (
	"context"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"

	logx "github.com/schema-designer/server/pkg/logger"
)

type startedAtKey struct{}

// newNodeHandler logs lambda node lifecycle with elapsed time.
func newNodeHandler() einocb.Handler {
	return einocb.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *einocb.RunInfo, _ einocb.CallbackInput) context.Context {
			logx.Debug().Str("node", info.Name).Msg("Node start")
			return context.WithValue(ctx, startedAtKey{}, time.Now())
		}).
		OnEndFn(func(ctx context.Context, info *einocb.RunInfo, _ einocb.CallbackOutput) context.Context {
			logx.Debug().Str("node", info.Name).Dur("elapsed", elapsed(ctx)).Msg("Node end")
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Error().Err(err).Str("node", info.Name).Dur("elapsed", elapsed(ctx)).Msg("Node error")
			return ctx
		}).
		Build()
}

func elapsed(ctx context.Context) time.Duration {
	if t, ok := ctx.Value(startedAtKey{}).(time.Time); ok {
		return time.Since(t)
	}
	return 0
}
