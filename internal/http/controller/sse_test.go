package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"realty_notify/internal/config"
	"realty_notify/internal/domain"
	"realty_notify/internal/model"
	"realty_notify/internal/presence"
	"realty_notify/internal/service/notify"
)

func setupSSE(t *testing.T, repo *repoMock, brokers *brokersMock) (*gin.Engine, *presence.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{InboxLimit: 10, SSEHeartbeat: time.Hour}
	registry := presence.NewRegistry()
	svc := notify.NewService(repo, brokers, registry, zap.NewNop())
	handler := NewHandler(cfg, svc, registry, zap.NewNop(), &publisherMock{})

	router := gin.New()
	router.GET("/sse/:broker", handler.SSE)
	return router, registry
}

func TestSSEController(t *testing.T) {
	t.Run("unknown broker is never registered", func(t *testing.T) {
		repo := &repoMock{}
		brokers := &brokersMock{}
		brokers.On("GetBroker", mock.Anything, "ghost@realty.io").Return(model.Broker{}, domain.ErrBrokerNotFound).Once()
		router, registry := setupSSE(t, repo, brokers)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sse/ghost@realty.io", nil))

		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Zero(t, registry.Len())
		repo.AssertNotCalled(t, "ListInbox", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		brokers.AssertExpectations(t)
	})

	t.Run("known broker replays backlog oldest first", func(t *testing.T) {
		repo := &repoMock{}
		repo.On("ListInbox", mock.Anything, "a@realty.io", true, 10).Return([]model.Notification{
			{ID: "n2", RecipientKind: string(domain.RecipientBroker), Broker: "a@realty.io", Message: "second"},
			{ID: "n1", RecipientKind: string(domain.RecipientBroker), Broker: "a@realty.io", Message: "first"},
		}, nil).Once()
		brokers := &brokersMock{}
		brokers.On("GetBroker", mock.Anything, "a@realty.io").Return(model.Broker{Email: "a@realty.io", Subscribed: true}, nil)
		router, registry := setupSSE(t, repo, brokers)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sse/a@realty.io", nil).WithContext(ctx))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
		body := rec.Body.String()
		first, second := strings.Index(body, "id: n1"), strings.Index(body, "id: n2")
		require.GreaterOrEqual(t, first, 0)
		require.Less(t, first, second)
		require.Zero(t, registry.Len())
		repo.AssertExpectations(t)
	})
}
