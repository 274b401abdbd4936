package services

import (
	"context"
	"errors"

	"github.com/Dosada05/mytournaments/realtime"
	"github.com/Dosada05/mytournaments/repositories"
	"github.com/rs/zerolog/log"
)

// saveOrResolveConflict saves the store. A concurrency conflict on a row that
// no longer exists becomes notFound; any other conflict is returned as is.
func saveOrResolveConflict(ctx context.Context, store *repositories.Store, op string,
	exists func(ctx context.Context) (bool, error), notFound error) error {

	_, err := store.SaveChanges(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, repositories.ErrConcurrencyConflict) {
		found, existsErr := exists(ctx)
		if existsErr != nil {
			return handleRepositoryError(existsErr, op)
		}
		if !found {
			return notFound
		}
		log.Ctx(ctx).Warn().Err(err).Str("op", op).Msg("optimistic concurrency conflict")
	}
	return handleRepositoryError(err, op)
}

func publish(ctx context.Context, n realtime.Notifier, event string, gameID int, payload any) {
	if n == nil || gameID <= 0 {
		return
	}
	n.Publish(ctx, realtime.Message{
		Type:    event,
		Payload: payload,
		RoomID:  realtime.GameRoom(gameID),
	})
}

func notifierOrNop(n realtime.Notifier) realtime.Notifier {
	if n == nil {
		return realtime.NopNotifier{}
	}
	return n
}
