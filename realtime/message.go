package realtime

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Типы событий, которые получают подписчики комнаты игры.
const (
	EventGameUpdated        = "GAME_UPDATED"
	EventGameDeleted        = "GAME_DELETED"
	EventTeamCreated        = "TEAM_CREATED"
	EventTeamUpdated        = "TEAM_UPDATED"
	EventTeamDeleted        = "TEAM_DELETED"
	EventTeamsDeleted       = "TEAMS_DELETED"
	EventPlayerCreated      = "PLAYER_CREATED"
	EventPlayerUpdated      = "PLAYER_UPDATED"
	EventPlayerDeleted      = "PLAYER_DELETED"
	EventTournamentLinked   = "TOURNAMENT_GAME_ADDED"
	EventTournamentUnlinked = "TOURNAMENT_GAME_REMOVED"
)

type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
	RoomID  string `json:"room_id,omitempty"`
}

// GameRoom is the room id used for all changes that concern one game.
func GameRoom(gameID int) string {
	return fmt.Sprintf("game-%d", gameID)
}

// Notifier delivers change messages. Delivery is best effort: failures are
// logged by the implementation and never fail the operation that caused them.
type Notifier interface {
	Publish(ctx context.Context, msg Message)
}

type NopNotifier struct{}

func (NopNotifier) Publish(context.Context, Message) {}

// MultiNotifier fans a message out to several notifiers in order.
type MultiNotifier []Notifier

func (m MultiNotifier) Publish(ctx context.Context, msg Message) {
	for _, n := range m {
		if n == nil {
			continue
		}
		n.Publish(ctx, msg)
	}
	log.Ctx(ctx).Debug().Str("type", msg.Type).Str("room", msg.RoomID).Msg("change published")
}
