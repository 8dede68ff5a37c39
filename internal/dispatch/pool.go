package dispatch

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cadencehq/cadence/internal/models"
	"github.com/cadencehq/cadence/internal/platform"
)

// Due pairs a due content item with its owning workflow
type Due struct {
	Content  *models.Content
	Workflow *models.Workflow
}

// DispatchAll fans due items out to one bounded worker pool per target
// platform, so a slow or backlogged platform cannot starve the others.
// Individual dispatch failures are settled and logged, never propagated.
func (d *Dispatcher) DispatchAll(ctx context.Context, due []Due) {
	byPlatform := make(map[platform.Platform][]Due)
	for _, item := range due {
		byPlatform[item.Content.Platform] = append(byPlatform[item.Content.Platform], item)
	}

	var outer errgroup.Group
	for p, items := range byPlatform {
		outer.Go(func() error {
			var pool errgroup.Group
			pool.SetLimit(d.cfg.PoolSize)
			for _, item := range items {
				pool.Go(func() error {
					if _, err := d.Dispatch(ctx, item.Content, item.Workflow); err != nil {
						d.logger.Error("Dispatch failed",
							zap.String("content_id", item.Content.ID),
							zap.String("platform", p.String()),
							zap.Error(err))
					}
					return nil
				})
			}
			return pool.Wait()
		})
	}
	_ = outer.Wait()
}
