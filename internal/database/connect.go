package database

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	connectAttempts = 5
	connectBackoff  = time.Second
)

// withRetry calls dial until it succeeds, doubling the wait between
// attempts. Postgres and Redis often finish starting after the server does.
func withRetry(ctx context.Context, log zerolog.Logger, name string, dial func(context.Context) error) error {
	wait := connectBackoff
	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if err = dial(ctx); err == nil {
			return nil
		}
		if attempt == connectAttempts {
			break
		}
		log.Warn().Err(err).Str("target", name).Int("attempt", attempt).Dur("retry_in", wait).Msg("Connection failed")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return err
}
