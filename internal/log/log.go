package log

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hibiken/asynq"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/tenancy/internal/constants"
	tenancyctx "github.com/openkcm/tenancy/utils/context"
)

// InjectRequest enriches the context logger with the request data.
func InjectRequest(ctx context.Context, r *http.Request) context.Context {
	requestID, _ := tenancyctx.GetRequestID(ctx)

	return slogctx.With(ctx,
		slog.String(constants.LogKeyRequestID, requestID),
		slog.Group("requestData",
			slog.String("method", r.Method),
			slog.String("host", r.Host),
			slog.String("path", r.URL.Path),
		),
	)
}

// InjectScope enriches the context logger with the bound tenant scope.
func InjectScope(ctx context.Context, scope tenancyctx.Scope) context.Context {
	return slogctx.With(ctx,
		slog.String(constants.LogKeyTenantID, scope.TenantID),
		slog.String(constants.LogKeySchemaName, scope.SchemaName),
	)
}

func InjectTask(ctx context.Context, task *asynq.Task) context.Context {
	return slogctx.With(ctx, slog.String(constants.LogKeyTaskType, task.Type()))
}

func Debug(ctx context.Context, msg string, args ...slog.Attr) {
	slogctx.LogAttrs(ctx, slog.LevelDebug, msg, args...)
}

func Warn(ctx context.Context, msg string, args ...slog.Attr) {
	slogctx.LogAttrs(ctx, slog.LevelWarn, msg, args...)
}

func Info(ctx context.Context, msg string, args ...slog.Attr) {
	slogctx.LogAttrs(ctx, slog.LevelInfo, msg, args...)
}

func Error(ctx context.Context, msg string, err error, args ...slog.Attr) {
	args = append(args, slogctx.Err(err))

	slogctx.LogAttrs(ctx, slog.LevelError, msg, args...)
}
