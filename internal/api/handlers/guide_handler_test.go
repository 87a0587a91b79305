package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cityguide/backend/internal/api/handlers"
	"github.com/cityguide/backend/internal/application/services"
	"github.com/cityguide/backend/internal/domain/entities"
	"github.com/cityguide/backend/internal/domain/providers"
	apperrors "github.com/cityguide/backend/pkg/errors"
)

type mockGuideService struct {
	mock.Mock
}

func (m *mockGuideService) OnUserSeen(ctx context.Context, platformID int64, displayName string) (*entities.UserProfile, error) {
	args := m.Called(ctx, platformID, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UserProfile), args.Error(1)
}

func (m *mockGuideService) OnLocationReceived(ctx context.Context, platformID int64, lat, lon float64) (services.Reply, error) {
	args := m.Called(ctx, platformID, lat, lon)
	return args.Get(0).(services.Reply), args.Error(1)
}

func (m *mockGuideService) OnAddressReceived(ctx context.Context, platformID int64, address string) (services.Reply, error) {
	args := m.Called(ctx, platformID, address)
	return args.Get(0).(services.Reply), args.Error(1)
}

func (m *mockGuideService) OnFindNearbyRequested(ctx context.Context, platformID int64) (services.Reply, error) {
	args := m.Called(ctx, platformID)
	return args.Get(0).(services.Reply), args.Error(1)
}

func (m *mockGuideService) OnRouteRequested(ctx context.Context, platformID int64, destination string) (services.Reply, error) {
	args := m.Called(ctx, platformID, destination)
	return args.Get(0).(services.Reply), args.Error(1)
}

func (m *mockGuideService) OnPreferenceSet(ctx context.Context, platformID int64, key string, value any) error {
	return m.Called(ctx, platformID, key, value).Error(0)
}

func (m *mockGuideService) OnSubscribe(ctx context.Context, platformID int64, subscriptionType string) (services.Reply, error) {
	args := m.Called(ctx, platformID, subscriptionType)
	return args.Get(0).(services.Reply), args.Error(1)
}

func (m *mockGuideService) OnListSubscriptions(ctx context.Context, platformID int64) ([]string, error) {
	args := m.Called(ctx, platformID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockGuideService) OnEventsRequested(ctx context.Context, platformID int64, limit int) (services.Reply, error) {
	args := m.Called(ctx, platformID, limit)
	return args.Get(0).(services.Reply), args.Error(1)
}

func newRequest(method, target, body, id string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.SetPathValue("id", id)
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestGuideHandler_RegisterUserGreets(t *testing.T) {
	guide := new(mockGuideService)
	handler := handlers.NewGuideHandler(guide)

	guide.On("OnUserSeen", mock.Anything, int64(42), "alice").
		Return(&entities.UserProfile{PlatformID: 42, DisplayName: "alice"}, nil)

	w := httptest.NewRecorder()
	handler.RegisterUser(w, newRequest(http.MethodPost, "/api/users/42", `{"display_name":" alice "}`, "42"))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, services.MsgWelcome, body["text"])
	profile, ok := body["profile"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "alice", profile["display_name"])
	guide.AssertExpectations(t)
}

func TestGuideHandler_SetLocation(t *testing.T) {
	guide := new(mockGuideService)
	handler := handlers.NewGuideHandler(guide)

	location := entities.GeoPoint{Latitude: 47.2, Longitude: 39.7}
	guide.On("OnLocationReceived", mock.Anything, int64(42), 47.2, 39.7).
		Return(services.Reply{Kind: services.ReplyText, Text: services.MsgLocationSaved, Location: &location}, nil)

	w := httptest.NewRecorder()
	handler.SetLocation(w, newRequest(http.MethodPut, "/api/users/42/location", `{"latitude":47.2,"longitude":39.7}`, "42"))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "text", body["kind"])
	assert.Equal(t, services.MsgLocationSaved, body["text"])
	guide.AssertExpectations(t)
}

func TestGuideHandler_SetLocation_MissingCoordinate(t *testing.T) {
	guide := new(mockGuideService)
	handler := handlers.NewGuideHandler(guide)

	w := httptest.NewRecorder()
	handler.SetLocation(w, newRequest(http.MethodPut, "/api/users/42/location", `{"latitude":47.2}`, "42"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	guide.AssertNotCalled(t, "OnLocationReceived", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGuideHandler_ValidationErrorIsBadRequest(t *testing.T) {
	guide := new(mockGuideService)
	handler := handlers.NewGuideHandler(guide)

	guide.On("OnLocationReceived", mock.Anything, int64(42), 91.0, 0.0).
		Return(services.Reply{}, apperrors.NewValidationError("latitude 91 out of range [-90, 90]"))

	w := httptest.NewRecorder()
	handler.SetLocation(w, newRequest(http.MethodPut, "/api/users/42/location", `{"latitude":91,"longitude":0}`, "42"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "latitude 91")
}

func TestGuideHandler_InvalidUserID(t *testing.T) {
	handler := handlers.NewGuideHandler(new(mockGuideService))

	w := httptest.NewRecorder()
	handler.FindNearby(w, newRequest(http.MethodGet, "/api/users/abc/nearby", "", "abc"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid user id", decodeBody(t, w)["error"])
}

func TestGuideHandler_FindNearby(t *testing.T) {
	guide := new(mockGuideService)
	handler := handlers.NewGuideHandler(guide)

	poi := entities.PointOfInterest{ID: 1, Name: "Ростовский кремль", Category: "history"}
	guide.On("OnFindNearbyRequested", mock.Anything, int64(7)).Return(services.Reply{
		Kind: services.ReplyText,
		Text: "🏛 Ближайшие места:",
		POIs: []services.RankedPOI{{POI: poi, Distance: 0.004}},
	}, nil)

	w := httptest.NewRecorder()
	handler.FindNearby(w, newRequest(http.MethodGet, "/api/users/7/nearby", "", "7"))

	require.Equal(t, http.StatusOK, w.Code)
	var body handlers.ReplyResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Len(t, body.POIs, 1)
	assert.Equal(t, "Ростовский кремль", body.POIs[0].Name)
	assert.InDelta(t, 0.004, body.POIs[0].Distance, 1e-9)
}

func TestGuideHandler_FindNearby_SetLocationFirst(t *testing.T) {
	guide := new(mockGuideService)
	handler := handlers.NewGuideHandler(guide)

	guide.On("OnFindNearbyRequested", mock.Anything, int64(7)).
		Return(services.Reply{Kind: services.ReplySetLocationFirst, Text: services.MsgSetLocationFirst}, nil)

	w := httptest.NewRecorder()
	handler.FindNearby(w, newRequest(http.MethodGet, "/api/users/7/nearby", "", "7"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "set_location_first", decodeBody(t, w)["kind"])
}

func TestGuideHandler_UnknownUserIsNotFound(t *testing.T) {
	guide := new(mockGuideService)
	handler := handlers.NewGuideHandler(guide)

	guide.On("OnRouteRequested", mock.Anything, int64(9), "").
		Return(services.Reply{}, apperrors.NewNotFoundError("user profile 9 not found"))

	w := httptest.NewRecorder()
	handler.Route(w, newRequest(http.MethodGet, "/api/users/9/route", "", "9"))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGuideHandler_RoutePassesDestination(t *testing.T) {
	guide := new(mockGuideService)
	handler := handlers.NewGuideHandler(guide)

	route := providers.Route{DistanceText: "1.2 км", DurationText: "5 мин"}
	guide.On("OnRouteRequested", mock.Anything, int64(9), "Парк Горького").
		Return(services.Reply{Kind: services.ReplyText, Text: "Маршрут", Route: &route, Outcome: providers.OutcomeFound}, nil)

	w := httptest.NewRecorder()
	handler.Route(w, newRequest(http.MethodGet, "/api/users/9/route?to=%D0%9F%D0%B0%D1%80%D0%BA+%D0%93%D0%BE%D1%80%D1%8C%D0%BA%D0%BE%D0%B3%D0%BE", "", "9"))

	require.Equal(t, http.StatusOK, w.Code)
	var body handlers.ReplyResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.NotNil(t, body.Route)
	assert.Equal(t, "1.2 км", body.Route.DistanceText)
	assert.Equal(t, providers.OutcomeFound, body.Outcome)
}

func TestGuideHandler_InternalErrorIsHidden(t *testing.T) {
	guide := new(mockGuideService)
	handler := handlers.NewGuideHandler(guide)

	guide.On("OnListSubscriptions", mock.Anything, int64(3)).
		Return(nil, apperrors.NewInternalError("failed to list subscriptions", errors.New("connection reset")))

	w := httptest.NewRecorder()
	handler.ListSubscriptions(w, newRequest(http.MethodGet, "/api/users/3/subscriptions", "", "3"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decodeBody(t, w)["error"])
}

func TestGuideHandler_SetPreference(t *testing.T) {
	guide := new(mockGuideService)
	handler := handlers.NewGuideHandler(guide)

	guide.On("OnPreferenceSet", mock.Anything, int64(5), "search_radius", 0.02).Return(nil)

	req := newRequest(http.MethodPut, "/api/users/5/preferences/search_radius", `{"value":0.02}`, "5")
	req.SetPathValue("key", "search_radius")
	w := httptest.NewRecorder()
	handler.SetPreference(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	guide.AssertExpectations(t)
}

func TestGuideHandler_UpcomingEventsRejectsBadLimit(t *testing.T) {
	handler := handlers.NewGuideHandler(new(mockGuideService))

	w := httptest.NewRecorder()
	handler.UpcomingEvents(w, newRequest(http.MethodGet, "/api/users/5/events?limit=-1", "", "5"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
