package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"realty_notify/internal/config"
	"realty_notify/internal/domain"
	"realty_notify/internal/http/dto"
	"realty_notify/internal/http/resp"
	"realty_notify/internal/model"
	"realty_notify/internal/presence"
	"realty_notify/internal/queue"
	"realty_notify/internal/repository"
	"realty_notify/internal/service/notify"
	"realty_notify/internal/view"
)

type repoMock struct {
	mock.Mock
}

func (m *repoMock) CreateNotification(ctx context.Context, n model.Notification) (model.Notification, error) {
	args := m.Called(ctx, n)
	return args.Get(0).(model.Notification), args.Error(1)
}

func (m *repoMock) ListInbox(ctx context.Context, broker string, subscribed bool, limit int) ([]model.Notification, error) {
	args := m.Called(ctx, broker, subscribed, limit)
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *repoMock) MarkRead(ctx context.Context, id string) (model.Notification, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Notification), args.Error(1)
}

func (m *repoMock) MarkInboxRead(ctx context.Context, broker string) (int64, error) {
	args := m.Called(ctx, broker)
	return args.Get(0).(int64), args.Error(1)
}

type brokersMock struct {
	mock.Mock
}

func (m *brokersMock) UpsertBroker(ctx context.Context, b model.Broker) (model.Broker, error) {
	args := m.Called(ctx, b)
	return args.Get(0).(model.Broker), args.Error(1)
}

func (m *brokersMock) GetBroker(ctx context.Context, email string) (model.Broker, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.Broker), args.Error(1)
}

func (m *brokersMock) ListBrokers(ctx context.Context) ([]model.Broker, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Broker), args.Error(1)
}

type publisherMock struct {
	mock.Mock
}

func (m *publisherMock) Publish(ctx context.Context, payload []byte, routingKey string) error {
	args := m.Called(ctx, payload, routingKey)
	return args.Error(0)
}

func setupRouter(t *testing.T, repo repository.NotificationRepository, brokers repository.BrokerRepository, publisher queue.Publisher) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		RabbitPublishPrefix: "notification",
		InboxLimit:          10,
	}
	registry := presence.NewRegistry()
	svc := notify.NewService(repo, brokers, registry, zap.NewNop())
	handler := NewHandler(cfg, svc, registry, zap.NewNop(), publisher)

	router := gin.New()
	router.POST("/notifications", handler.CreateNotification)
	router.POST("/notifications/publish", handler.PublishNotification)
	router.PATCH("/notifications/:id/read", handler.MarkRead)
	router.GET("/brokers", handler.ListBrokers)
	router.POST("/brokers", handler.UpsertBroker)
	router.GET("/brokers/:broker/notifications", handler.Inbox)
	router.POST("/brokers/:broker/notifications/read", handler.MarkAllRead)
	return router
}

func performJSONRequest(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func validRequest() map[string]any {
	return map[string]any{
		"recipient":     map[string]string{"kind": "broker", "broker": "a@realty.io"},
		"category":      domain.CategoryManual,
		"channel":       domain.ChannelInApp,
		"message":       "open house",
		"delivery_time": "2024-05-01T10:00:00Z",
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateNotificationController(t *testing.T) {
	t.Run("invalid json", func(t *testing.T) {
		repo := &repoMock{}
		router := setupRouter(t, repo, &brokersMock{}, &publisherMock{})

		req := httptest.NewRequest(http.MethodPost, "/notifications", bytes.NewBufferString("{bad"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		repo.AssertNotCalled(t, "CreateNotification", mock.Anything, mock.Anything)
	})

	t.Run("missing recipient", func(t *testing.T) {
		repo := &repoMock{}
		router := setupRouter(t, repo, &brokersMock{}, &publisherMock{})

		body := validRequest()
		delete(body, "recipient")
		rec := performJSONRequest(t, router, http.MethodPost, "/notifications", body)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, resp.CodeBadRequest, decodeError(t, rec).Code)
		repo.AssertNotCalled(t, "CreateNotification", mock.Anything, mock.Anything)
	})

	t.Run("sentinel string is not a recipient", func(t *testing.T) {
		repo := &repoMock{}
		router := setupRouter(t, repo, &brokersMock{}, &publisherMock{})

		body := validRequest()
		body["recipient"] = map[string]string{"kind": "All Brokers"}
		rec := performJSONRequest(t, router, http.MethodPost, "/notifications", body)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		repo.AssertNotCalled(t, "CreateNotification", mock.Anything, mock.Anything)
	})

	t.Run("invalid channel", func(t *testing.T) {
		repo := &repoMock{}
		router := setupRouter(t, repo, &brokersMock{}, &publisherMock{})

		body := validRequest()
		body["channel"] = "sms"
		rec := performJSONRequest(t, router, http.MethodPost, "/notifications", body)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, decodeError(t, rec).Message, "channel")
	})

	t.Run("unknown broker", func(t *testing.T) {
		repo := &repoMock{}
		brokers := &brokersMock{}
		brokers.On("GetBroker", mock.Anything, "a@realty.io").Return(model.Broker{}, domain.ErrBrokerNotFound).Once()
		router := setupRouter(t, repo, brokers, &publisherMock{})

		rec := performJSONRequest(t, router, http.MethodPost, "/notifications", validRequest())

		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, resp.CodeNotFound, decodeError(t, rec).Code)
		repo.AssertNotCalled(t, "CreateNotification", mock.Anything, mock.Anything)
	})

	t.Run("store error", func(t *testing.T) {
		repo := &repoMock{}
		repo.On("CreateNotification", mock.Anything, mock.Anything).Return(model.Notification{}, errors.New("db down")).Once()
		brokers := &brokersMock{}
		brokers.On("GetBroker", mock.Anything, "a@realty.io").Return(model.Broker{Email: "a@realty.io"}, nil).Once()
		router := setupRouter(t, repo, brokers, &publisherMock{})

		rec := performJSONRequest(t, router, http.MethodPost, "/notifications", validRequest())

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, resp.CodeInternalError, decodeError(t, rec).Code)
	})

	t.Run("success", func(t *testing.T) {
		repo := &repoMock{}
		repo.On("CreateNotification", mock.Anything, mock.Anything).Return(model.Notification{
			ID:            "99",
			RecipientKind: string(domain.RecipientBroker),
			Recipient:     "a@realty.io",
			Broker:        "a@realty.io",
			Category:      domain.CategoryManual,
			Channel:       domain.ChannelInApp,
			Message:       "open house",
			DeliveryTime:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		}, nil).Once()
		brokers := &brokersMock{}
		brokers.On("GetBroker", mock.Anything, "a@realty.io").Return(model.Broker{Email: "a@realty.io"}, nil).Once()
		router := setupRouter(t, repo, brokers, &publisherMock{})

		rec := performJSONRequest(t, router, http.MethodPost, "/notifications", validRequest())

		require.Equal(t, http.StatusCreated, rec.Code)
		var got view.NotificationView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Equal(t, "99", got.ID)
		require.Equal(t, "2024-05-01T10:00:00Z", got.DeliveryTime)
		repo.AssertExpectations(t)
	})
}

func TestPublishNotificationController(t *testing.T) {
	t.Run("publish success", func(t *testing.T) {
		repo := &repoMock{}
		pub := &publisherMock{}
		pub.On("Publish", mock.Anything, mock.Anything, "notification."+domain.CategoryAutomated).Return(nil).Once()
		router := setupRouter(t, repo, &brokersMock{}, pub)

		body := validRequest()
		body["category"] = domain.CategoryAutomated
		rec := performJSONRequest(t, router, http.MethodPost, "/notifications/publish", body)

		require.Equal(t, http.StatusAccepted, rec.Code)
		pub.AssertExpectations(t)
		repo.AssertNotCalled(t, "CreateNotification", mock.Anything, mock.Anything)

		var payload dto.CreateNotificationRequest
		published := pub.Calls[0].Arguments.Get(1).([]byte)
		require.NoError(t, json.Unmarshal(published, &payload))
		require.NotNil(t, payload.Recipient)
		require.Equal(t, "a@realty.io", payload.Recipient.Broker)
		require.Equal(t, domain.CategoryAutomated, payload.Category)
	})

	t.Run("invalid request is not published", func(t *testing.T) {
		pub := &publisherMock{}
		router := setupRouter(t, &repoMock{}, &brokersMock{}, pub)

		body := validRequest()
		body["delivery_time"] = "soon"
		rec := performJSONRequest(t, router, http.MethodPost, "/notifications/publish", body)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("publish error", func(t *testing.T) {
		pub := &publisherMock{}
		pub.On("Publish", mock.Anything, mock.Anything, "notification."+domain.CategoryManual).Return(errors.New("publish failed")).Once()
		router := setupRouter(t, &repoMock{}, &brokersMock{}, pub)

		rec := performJSONRequest(t, router, http.MethodPost, "/notifications/publish", validRequest())

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, resp.CodeInternalError, decodeError(t, rec).Code)
		pub.AssertExpectations(t)
	})
}

func TestMarkReadController(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		repo := &repoMock{}
		repo.On("MarkRead", mock.Anything, "missing").Return(model.Notification{}, domain.ErrNotificationNotFound).Once()
		router := setupRouter(t, repo, &brokersMock{}, &publisherMock{})

		rec := performJSONRequest(t, router, http.MethodPatch, "/notifications/missing/read", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("success twice", func(t *testing.T) {
		repo := &repoMock{}
		repo.On("MarkRead", mock.Anything, "7").Return(model.Notification{ID: "7", Read: true}, nil).Twice()
		router := setupRouter(t, repo, &brokersMock{}, &publisherMock{})

		for i := 0; i < 2; i++ {
			rec := performJSONRequest(t, router, http.MethodPatch, "/notifications/7/read", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			var got view.NotificationView
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			require.True(t, got.Read)
		}
		repo.AssertExpectations(t)
	})
}

func TestInboxController(t *testing.T) {
	t.Run("unknown broker", func(t *testing.T) {
		brokers := &brokersMock{}
		brokers.On("GetBroker", mock.Anything, "ghost@realty.io").Return(model.Broker{}, domain.ErrBrokerNotFound).Once()
		router := setupRouter(t, &repoMock{}, brokers, &publisherMock{})

		rec := performJSONRequest(t, router, http.MethodGet, "/brokers/ghost@realty.io/notifications", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("uses query limit", func(t *testing.T) {
		repo := &repoMock{}
		repo.On("ListInbox", mock.Anything, "a@realty.io", false, 2).Return([]model.Notification{
			{ID: "2", Read: false},
			{ID: "1", Read: true},
		}, nil).Once()
		brokers := &brokersMock{}
		brokers.On("GetBroker", mock.Anything, "a@realty.io").Return(model.Broker{Email: "a@realty.io"}, nil).Once()
		router := setupRouter(t, repo, brokers, &publisherMock{})

		rec := performJSONRequest(t, router, http.MethodGet, "/brokers/a@realty.io/notifications?limit=2", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var body dto.InboxResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, 1, body.Unread)
		require.Len(t, body.Notifications, 2)
		require.Equal(t, "2", body.Notifications[0].ID)
		repo.AssertExpectations(t)
	})

	t.Run("default limit from config", func(t *testing.T) {
		repo := &repoMock{}
		repo.On("ListInbox", mock.Anything, "a@realty.io", false, 10).Return([]model.Notification{}, nil).Once()
		brokers := &brokersMock{}
		brokers.On("GetBroker", mock.Anything, "a@realty.io").Return(model.Broker{Email: "a@realty.io"}, nil).Once()
		router := setupRouter(t, repo, brokers, &publisherMock{})

		rec := performJSONRequest(t, router, http.MethodGet, "/brokers/a@realty.io/notifications?limit=bad", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		repo.AssertExpectations(t)
	})
}

func TestMarkAllReadController(t *testing.T) {
	repo := &repoMock{}
	repo.On("MarkInboxRead", mock.Anything, "a@realty.io").Return(int64(3), nil).Once()
	brokers := &brokersMock{}
	brokers.On("GetBroker", mock.Anything, "a@realty.io").Return(model.Broker{Email: "a@realty.io"}, nil).Once()
	router := setupRouter(t, repo, brokers, &publisherMock{})

	rec := performJSONRequest(t, router, http.MethodPost, "/brokers/a@realty.io/notifications/read", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body dto.MarkAllReadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, int64(3), body.Updated)
}

func TestBrokersController(t *testing.T) {
	t.Run("upsert requires email", func(t *testing.T) {
		brokers := &brokersMock{}
		router := setupRouter(t, &repoMock{}, brokers, &publisherMock{})

		rec := performJSONRequest(t, router, http.MethodPost, "/brokers", map[string]any{"name": "nobody"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		brokers.AssertNotCalled(t, "UpsertBroker", mock.Anything, mock.Anything)
	})

	t.Run("upsert and list", func(t *testing.T) {
		brokers := &brokersMock{}
		brokers.On("UpsertBroker", mock.Anything, model.Broker{Email: "a@realty.io", Subscribed: true}).
			Return(model.Broker{Email: "a@realty.io", Subscribed: true}, nil).Once()
		brokers.On("ListBrokers", mock.Anything).Return([]model.Broker{{Email: "a@realty.io", Subscribed: true}}, nil).Once()
		router := setupRouter(t, &repoMock{}, brokers, &publisherMock{})

		rec := performJSONRequest(t, router, http.MethodPost, "/brokers", map[string]any{"email": "a@realty.io", "subscribed": true})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = performJSONRequest(t, router, http.MethodGet, "/brokers", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var got []view.BrokerView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		require.True(t, got[0].Subscribed)
		require.False(t, got[0].Online)
		brokers.AssertExpectations(t)
	})
}
