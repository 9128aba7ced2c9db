package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"realty_notify/internal/http/dto"
	"realty_notify/internal/http/resp"
	"realty_notify/internal/model"
	"realty_notify/internal/view"
)

func (h *Handler) ListBrokers(c *gin.Context) {
	statuses, err := h.svc.ListBrokers(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to list brokers")
		return
	}
	out := make([]view.BrokerView, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, view.Broker(s.Broker, s.Online))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) UpsertBroker(c *gin.Context) {
	var req dto.UpsertBrokerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "invalid json"})
		return
	}
	saved, err := h.svc.UpsertBroker(c.Request.Context(), model.Broker{
		Email:      req.Email,
		Name:       req.Name,
		Subscribed: req.Subscribed,
	})
	if err != nil {
		h.fail(c, err, "failed to save broker", zap.String("email", req.Email))
		return
	}
	_, online := h.registry.Lookup(saved.Email)
	c.JSON(http.StatusOK, view.Broker(saved, online))
}
