package live

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// Handler апгрейдит соединение и подписывает клиента на ленту матчей.
type Handler struct {
	hub      *Hub
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, allowedOrigin string, logger *slog.Logger) *Handler {
	h := &Handler{hub: hub, logger: logger}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(allowedOrigin, r.Header.Get("Origin"))
		},
	}
	return h
}

// originAllowed пропускает соединение, когда Origin совпадает с настроенным
// адресом фронтенда. Пустая настройка и запросы без Origin (не-браузерные
// клиенты) разрешены.
func originAllowed(allowed, origin string) bool {
	if allowed == "" || origin == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSuffix(origin, "/"), strings.TrimSuffix(allowed, "/"))
}

func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту HTTP-ошибкой.
		h.logger.Error("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := &Client{
		hub:  h.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}
