package worker

import (
	"context"
	"time"

	"github.com/leodymann/wi-api/internal/dispatch"
)

// DispatchTask adapts one billing category to the loop.
func DispatchTask(engine *dispatch.Engine, cat dispatch.Category) Task {
	return Task{
		Name: cat.Name(),
		Run: func(ctx context.Context, now time.Time) (int, error) {
			res, err := engine.Run(ctx, cat, now)
			return res.Sent, err
		},
	}
}
