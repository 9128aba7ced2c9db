package controller

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"realty_notify/internal/http/dto"
	"realty_notify/internal/http/resp"
	"realty_notify/internal/metrics"
	"realty_notify/internal/sse"
	"realty_notify/internal/view"
)

// SSE checks the broker exists, registers the event stream as the broker's live handle, replays the
// inbox oldest first, then streams pushes until the client goes away.
func (h *Handler) SSE(c *gin.Context) {
	broker := c.Param("broker")
	if broker == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "broker required"})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		h.log.Error("streaming unsupported", zap.String("broker", broker))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "streaming unsupported"})
		return
	}

	if _, err := h.svc.Broker(c.Request.Context(), broker); err != nil {
		h.fail(c, err, "failed to look up broker", zap.String("broker", broker))
		return
	}

	// Register before reading the inbox so nothing submitted in between is
	// lost; records seen in the backlog are skipped on the live side.
	stream := sse.NewStream(broker, 16)
	if err := h.registry.Register(broker, stream); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: err.Error()})
		return
	}
	metrics.OnlineBrokers.Set(float64(h.registry.Len()))
	defer func() {
		stream.Close()
		h.registry.Unregister(broker, stream)
		metrics.OnlineBrokers.Set(float64(h.registry.Len()))
	}()

	inbox, err := h.svc.FetchInbox(c.Request.Context(), broker, h.limit(c))
	if err != nil {
		h.fail(c, err, "failed to list notifications", zap.String("broker", broker))
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	seen := make(map[string]struct{}, len(inbox.Notifications))
	for i := len(inbox.Notifications) - 1; i >= 0; i-- {
		n := inbox.Notifications[i]
		seen[n.ID] = struct{}{}
		payload, err := view.EncodeNotification(n)
		if err != nil {
			h.log.Error("encode backlog notification failed", zap.String("broker", broker), zap.Error(err))
			continue
		}
		if err := sse.WriteEvent(c.Writer, n.ID, payload); err != nil {
			h.log.Error("write backlog notification failed", zap.String("broker", broker), zap.Error(err))
			return
		}
	}
	flusher.Flush()

	heartbeat := time.NewTicker(h.heartbeat())
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-heartbeat.C:
			if err := sse.WriteHeartbeat(c.Writer); err != nil {
				h.log.Error("heartbeat write failed", zap.String("broker", broker), zap.Error(err))
				return
			}
			flusher.Flush()
		case payload := <-stream.Messages():
			var head struct {
				ID string `json:"id"`
			}
			_ = json.Unmarshal(payload, &head)
			if _, dup := seen[head.ID]; dup {
				continue
			}
			if err := sse.WriteEvent(c.Writer, head.ID, payload); err != nil {
				h.log.Error("write notification failed", zap.String("broker", broker), zap.Error(err))
				return
			}
			flusher.Flush()
		}
	}
}

func (h *Handler) heartbeat() time.Duration {
	if h.cfg.SSEHeartbeat > 0 {
		return h.cfg.SSEHeartbeat
	}
	return 15 * time.Second
}
