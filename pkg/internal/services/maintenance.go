package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"git.hoarder.pics/hoarder/gateway/pkg/internal/queries"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/upstream"
)

// DoCacheWarmup re-fetches the tag and tag-type snapshots on a timer so
// suggestion data stays warm between user actions. Failures are logged
// and retried on the next tick only.
func DoCacheWarmup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Debug().Msg("Warming up the tag caches...")
	err := queries.Refetch(ctx, upstream.Client, upstream.Cache,
		queries.RefetchFlatTags,
		queries.RefetchAllTagTypes,
	)
	if err != nil {
		log.Warn().Err(err).Msg("An error occurred when warming up the tag caches...")
		return
	}

	log.Debug().Msg("Tag caches are warmed up.")
}
