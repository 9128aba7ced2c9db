package ws

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"realty_notify/internal/config"
	"realty_notify/internal/metrics"
	"realty_notify/internal/presence"
)

type controlMessage struct {
	Action string `json:"action"`
	Broker string `json:"broker"`
}

type Handler struct {
	registry   *presence.Registry
	log        *zap.Logger
	upgrader   websocket.Upgrader
	pingPeriod time.Duration
	sendBuffer int
}

func NewHandler(cfg *config.Config, registry *presence.Registry, logger *zap.Logger) *Handler {
	pingPeriod := cfg.WSPingPeriod
	if pingPeriod <= 0 {
		pingPeriod = 54 * time.Second
	}
	return &Handler{
		registry: registry,
		log:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
		pingPeriod: pingPeriod,
		sendBuffer: cfg.WSSendBuffer,
	}
}

// Serve upgrades the request and keeps the broker registered until the
// socket closes. The broker identity comes from ?broker= or a later
// {"action":"register","broker":"..."} frame.
func (h *Handler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	session := newSession(conn, h.sendBuffer)
	go session.writePump(h.pingPeriod)

	if broker := strings.TrimSpace(c.Query("broker")); broker != "" {
		h.register(session, broker)
	}

	h.readPump(session)

	h.release(session)
	session.close()
}

func (h *Handler) readPump(session *Session) {
	pongWait := h.pingPeriod * 10 / 9
	session.conn.SetReadLimit(maxMessageSize)
	_ = session.conn.SetReadDeadline(time.Now().Add(pongWait))
	session.conn.SetPongHandler(func(string) error {
		return session.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := session.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.log.Warn("websocket read failed", zap.String("session", session.ID), zap.Error(err))
			}
			return
		}
		_ = session.conn.SetReadDeadline(time.Now().Add(pongWait))

		var cm controlMessage
		if err := json.Unmarshal(msg, &cm); err != nil {
			h.reject(session, "invalid control message")
			continue
		}
		switch cm.Action {
		case "register":
			broker := strings.TrimSpace(cm.Broker)
			if broker == "" {
				h.reject(session, "broker required")
				continue
			}
			h.register(session, broker)
		default:
			h.reject(session, "unknown action")
		}
	}
}

func (h *Handler) register(session *Session, broker string) {
	if previous := session.bind(broker); previous != "" && previous != broker {
		h.registry.Unregister(previous, session)
	}
	if err := h.registry.Register(broker, session); err != nil {
		h.reject(session, err.Error())
		return
	}
	metrics.OnlineBrokers.Set(float64(h.registry.Len()))
	h.log.Info("broker connected", zap.String("broker", broker), zap.String("session", session.ID))

	ack, _ := json.Marshal(map[string]string{"broker": broker})
	if err := session.enqueue(EventRegistered, ack); err != nil {
		h.log.Warn("websocket ack failed", zap.String("broker", broker), zap.Error(err))
	}
}

func (h *Handler) release(session *Session) {
	broker := session.Broker()
	if broker == "" {
		return
	}
	removed := h.registry.Unregister(broker, session)
	metrics.OnlineBrokers.Set(float64(h.registry.Len()))
	h.log.Info("broker disconnected",
		zap.String("broker", broker),
		zap.String("session", session.ID),
		zap.Bool("replaced", !removed),
	)
}

func (h *Handler) reject(session *Session, reason string) {
	data, _ := json.Marshal(map[string]string{"message": reason})
	_ = session.enqueue(EventError, data)
}
