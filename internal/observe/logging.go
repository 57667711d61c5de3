package observe

import (
	"context"
	"log/slog"
)

// QueryLogger returns the default slog logger scoped to one query, carrying
// a request id and the query text. It adds no hop-level fields.
func QueryLogger(requestID, query string) *slog.Logger {
	return slog.Default().With(
		slog.String("request_id", requestID),
		slog.String("query", query),
	)
}

// LogHop emits one structured line per hop, carrying the hop index, the
// beam width used, and the candidate count produced — the per-hop
// accounting the driver tracks in its response metadata.
func LogHop(ctx context.Context, logger *slog.Logger, hopIndex, width, candidates int) {
	logger.LogAttrs(ctx, slog.LevelDebug, "hop executed",
		slog.Int("hop", hopIndex),
		slog.Int("width", width),
		slog.Int("candidates", candidates),
	)
}

// LogQueryResult emits one structured line summarizing a completed query.
func LogQueryResult(ctx context.Context, logger *slog.Logger, results int, errorTag string) {
	if errorTag != "" {
		logger.LogAttrs(ctx, slog.LevelWarn, "query failed",
			slog.String("error_tag", errorTag),
		)
		return
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "query completed",
		slog.Int("results", results),
	)
}
