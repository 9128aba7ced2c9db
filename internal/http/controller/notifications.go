package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"realty_notify/internal/config"
	"realty_notify/internal/domain"
	"realty_notify/internal/http/dto"
	"realty_notify/internal/http/resp"
	"realty_notify/internal/presence"
	"realty_notify/internal/queue"
	"realty_notify/internal/service/notify"
	"realty_notify/internal/view"
)

type Handler struct {
	cfg      *config.Config
	svc      *notify.Service
	registry *presence.Registry
	log      *zap.Logger
	pub      queue.Publisher
}

func NewHandler(cfg *config.Config, svc *notify.Service, registry *presence.Registry, logger *zap.Logger, publisher queue.Publisher) *Handler {
	return &Handler{cfg: cfg, svc: svc, registry: registry, log: logger, pub: publisher}
}

func toSubmission(req dto.CreateNotificationRequest) notify.Submission {
	sub := notify.Submission{
		Category:     req.Category,
		Channel:      req.Channel,
		Message:      req.Message,
		DeliveryTime: req.DeliveryTime,
	}
	if req.Recipient != nil {
		sub.Recipient = domain.Recipient{
			Kind:   domain.RecipientKind(req.Recipient.Kind),
			Broker: req.Recipient.Broker,
		}
	}
	return sub
}

func (h *Handler) CreateNotification(c *gin.Context) {
	var req dto.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "invalid json"})
		return
	}
	created, err := h.svc.Submit(c.Request.Context(), toSubmission(req))
	if err != nil {
		h.fail(c, err, "failed to create notification", zap.String("category", req.Category))
		return
	}
	c.JSON(http.StatusCreated, view.Notification(created))
}

func (h *Handler) PublishNotification(c *gin.Context) {
	var req dto.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "invalid json"})
		return
	}
	if err := h.svc.Validate(toSubmission(req)); err != nil {
		h.fail(c, err, "failed to publish notification")
		return
	}

	payload, err := json.Marshal(req)
	if err != nil {
		h.log.Error("publish payload marshal failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to publish notification"})
		return
	}

	prefix := h.cfg.RabbitPublishPrefix
	if prefix == "" {
		prefix = "notification"
	}
	routingKey := prefix + "." + req.Category
	if err := h.pub.Publish(c.Request.Context(), payload, routingKey); err != nil {
		h.log.Error("publish notification failed",
			zap.String("category", req.Category),
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to publish notification"})
		return
	}

	c.JSON(http.StatusAccepted, dto.StatusResponse{Code: resp.CodeQueued, Message: "queued"})
}

func (h *Handler) MarkRead(c *gin.Context) {
	updated, err := h.svc.MarkRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to mark notification read", zap.String("id", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, view.Notification(updated))
}

func (h *Handler) Inbox(c *gin.Context) {
	broker := c.Param("broker")
	limit := h.limit(c)
	inbox, err := h.svc.FetchInbox(c.Request.Context(), broker, limit)
	if err != nil {
		h.fail(c, err, "failed to list notifications", zap.String("broker", broker))
		return
	}
	c.JSON(http.StatusOK, dto.InboxResponse{
		Broker:        broker,
		Unread:        inbox.Unread,
		Notifications: view.Notifications(inbox.Notifications),
	})
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	broker := c.Param("broker")
	n, err := h.svc.MarkAllRead(c.Request.Context(), broker)
	if err != nil {
		h.fail(c, err, "failed to mark notifications read", zap.String("broker", broker))
		return
	}
	c.JSON(http.StatusOK, dto.MarkAllReadResponse{Broker: broker, Updated: n})
}

func (h *Handler) limit(c *gin.Context) int {
	limit := h.cfg.InboxLimit
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			limit = n
		}
	}
	return limit
}

// fail maps service errors onto the response codes. Only unexpected errors
// are logged here; validation and lookup misses are the caller's problem.
func (h *Handler) fail(c *gin.Context, err error, internalMessage string, fields ...zap.Field) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: verr.Error()})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Code: resp.CodeNotFound, Message: err.Error()})
	default:
		h.log.Error(internalMessage, append(fields, zap.Error(err))...)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: internalMessage})
	}
}
