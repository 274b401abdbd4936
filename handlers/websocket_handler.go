package handlers

import (
	"net/http"
	"net/url"

	"github.com/Dosada05/mytournaments/realtime"
	"github.com/Dosada05/mytournaments/services"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type WebSocketHandler struct {
	hub         *realtime.Hub
	gameService *services.GameService
	upgrader    websocket.Upgrader
}

// NewWebSocketHandler creates the handler. allowedOrigins follows the CORS
// setting: "*" accepts any origin, otherwise the Origin header must match.
func NewWebSocketHandler(hub *realtime.Hub, gs *services.GameService, allowedOrigins []string) *WebSocketHandler {
	h := &WebSocketHandler{hub: hub, gameService: gs}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if set[origin] {
			return true
		}
		// Тот же хост, что и у сервера.
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}

// ServeWs подключает клиента к комнате игры: /ws/games/{gameID}.
// Клиент получает события об изменении игры, её команд и игроков.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if _, err := h.gameService.Get(r.Context(), gameID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой.
		log.Ctx(r.Context()).Warn().Err(err).Int("game_id", gameID).Msg("websocket upgrade failed")
		return
	}

	room := realtime.GameRoom(gameID)
	client := realtime.NewClient(h.hub, conn, room)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Ctx(r.Context()).Debug().Str("room", room).Int("game_id", gameID).Msg("websocket client connected")
}
