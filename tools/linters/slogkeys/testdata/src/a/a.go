package a

import (
	"context"
	"log/slog"
)

const todoIDKey = "todoID"

func good(ctx context.Context, logger *slog.Logger) {
	slog.InfoContext(ctx, "todo created", "todo_id", "1", "owner", "Fry")
	logger.WarnContext(ctx, "request body too large", "max_bytes", 10)
	logger.Info("grouped", slog.Int("group_count", 2), "dimension", "status")
	slog.Error("failed", slog.String("error", "boom"))
	_ = logger.With("service_name", "todos")
}

func bad(ctx context.Context, logger *slog.Logger) {
	slog.InfoContext(ctx, "todo created", "todoId", "1") // want `slog key "todoId" should be snake_case`
	logger.Error("failed", "Error", "boom")             // want `slog key "Error" should be snake_case`
	logger.Info("grouped", slog.Int("groupCount", 2))   // want `slog key "groupCount" should be snake_case`
	slog.Debug("lookup", todoIDKey, "1")                // want `slog key "todoID" should be snake_case`
	_ = logger.With("service-name", "todos")            // want `slog key "service-name" should be snake_case`
	logger.Log(ctx, slog.LevelInfo, "msg", "a b", 1)    // want `slog key "a b" should be snake_case`
}

func values(ctx context.Context) {
	// Values are never keys.
	slog.InfoContext(ctx, "todo created", "owner", "NotSnake")
}

func nolint(ctx context.Context) {
	//nolint
	slog.InfoContext(ctx, "x", "camelCase", 1)
	slog.InfoContext(ctx, "x", "camelCase", 1) //nolint:slogkeys
}
