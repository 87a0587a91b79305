package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/cityguide/backend/internal/application/services"
	"github.com/cityguide/backend/internal/domain/entities"
	"github.com/cityguide/backend/internal/domain/providers"
	"github.com/cityguide/backend/internal/infrastructure/observability"
	apperrors "github.com/cityguide/backend/pkg/errors"
)

// GuideService defines the facade operations used by the handler.
type GuideService interface {
	OnUserSeen(ctx context.Context, platformID int64, displayName string) (*entities.UserProfile, error)
	OnLocationReceived(ctx context.Context, platformID int64, lat, lon float64) (services.Reply, error)
	OnAddressReceived(ctx context.Context, platformID int64, address string) (services.Reply, error)
	OnFindNearbyRequested(ctx context.Context, platformID int64) (services.Reply, error)
	OnRouteRequested(ctx context.Context, platformID int64, destination string) (services.Reply, error)
	OnPreferenceSet(ctx context.Context, platformID int64, key string, value any) error
	OnSubscribe(ctx context.Context, platformID int64, subscriptionType string) (services.Reply, error)
	OnListSubscriptions(ctx context.Context, platformID int64) ([]string, error)
	OnEventsRequested(ctx context.Context, platformID int64, limit int) (services.Reply, error)
}

// GuideHandler exposes the guide facade over JSON so a messaging gateway can call it
type GuideHandler struct {
	guide GuideService
}

// NewGuideHandler creates a new guide handler
func NewGuideHandler(guide GuideService) *GuideHandler {
	return &GuideHandler{guide: guide}
}

type registerRequest struct {
	DisplayName string `json:"display_name"`
}

// registerResponse greets the user alongside the stored profile
type registerResponse struct {
	Profile *entities.UserProfile `json:"profile"`
	Text    string                `json:"text"`
}

type locationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type addressRequest struct {
	Address string `json:"address"`
}

type preferenceRequest struct {
	Value any `json:"value"`
}

type subscribeRequest struct {
	Type string `json:"type"`
}

// ReplyResponse is the JSON rendering of a facade reply
type ReplyResponse struct {
	Kind     services.ReplyKind  `json:"kind"`
	Text     string              `json:"text"`
	POIs     []RankedPOIResponse `json:"pois,omitempty"`
	Route    *providers.Route    `json:"route,omitempty"`
	Location *entities.GeoPoint  `json:"location,omitempty"`
	Outcome  providers.Outcome   `json:"outcome,omitempty"`
}

// RankedPOIResponse is a POI with its distance from the user
type RankedPOIResponse struct {
	entities.PointOfInterest
	Distance float64 `json:"distance"`
}

// RegisterUser handles POST /api/users/{id}
func (h *GuideHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	platformID, ok := platformIDFromPath(w, r)
	if !ok {
		return
	}

	var payload registerRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request payload")
			return
		}
	}

	profile, err := h.guide.OnUserSeen(r.Context(), platformID, strings.TrimSpace(payload.DisplayName))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, registerResponse{Profile: profile, Text: services.MsgWelcome})
}

// SetLocation handles PUT /api/users/{id}/location
func (h *GuideHandler) SetLocation(w http.ResponseWriter, r *http.Request) {
	platformID, ok := platformIDFromPath(w, r)
	if !ok {
		return
	}

	var payload locationRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if payload.Latitude == nil || payload.Longitude == nil {
		respondWithError(w, http.StatusBadRequest, "latitude and longitude are required")
		return
	}

	reply, err := h.guide.OnLocationReceived(r.Context(), platformID, *payload.Latitude, *payload.Longitude)
	h.respondWithReply(w, r, reply, err)
}

// SetAddress handles POST /api/users/{id}/address
func (h *GuideHandler) SetAddress(w http.ResponseWriter, r *http.Request) {
	platformID, ok := platformIDFromPath(w, r)
	if !ok {
		return
	}

	var payload addressRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	address := strings.TrimSpace(payload.Address)
	if address == "" {
		respondWithError(w, http.StatusBadRequest, "address is required")
		return
	}

	reply, err := h.guide.OnAddressReceived(r.Context(), platformID, address)
	h.respondWithReply(w, r, reply, err)
}

// FindNearby handles GET /api/users/{id}/nearby
func (h *GuideHandler) FindNearby(w http.ResponseWriter, r *http.Request) {
	platformID, ok := platformIDFromPath(w, r)
	if !ok {
		return
	}

	reply, err := h.guide.OnFindNearbyRequested(r.Context(), platformID)
	h.respondWithReply(w, r, reply, err)
}

// Route handles GET /api/users/{id}/route?to=...
func (h *GuideHandler) Route(w http.ResponseWriter, r *http.Request) {
	platformID, ok := platformIDFromPath(w, r)
	if !ok {
		return
	}

	reply, err := h.guide.OnRouteRequested(r.Context(), platformID, r.URL.Query().Get("to"))
	h.respondWithReply(w, r, reply, err)
}

// SetPreference handles PUT /api/users/{id}/preferences/{key}
func (h *GuideHandler) SetPreference(w http.ResponseWriter, r *http.Request) {
	platformID, ok := platformIDFromPath(w, r)
	if !ok {
		return
	}

	var payload preferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.guide.OnPreferenceSet(r.Context(), platformID, r.PathValue("key"), payload.Value); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Subscribe handles POST /api/users/{id}/subscriptions
func (h *GuideHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	platformID, ok := platformIDFromPath(w, r)
	if !ok {
		return
	}

	var payload subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	reply, err := h.guide.OnSubscribe(r.Context(), platformID, payload.Type)
	h.respondWithReply(w, r, reply, err)
}

// ListSubscriptions handles GET /api/users/{id}/subscriptions
func (h *GuideHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	platformID, ok := platformIDFromPath(w, r)
	if !ok {
		return
	}

	types, err := h.guide.OnListSubscriptions(r.Context(), platformID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"subscriptions": types,
		"text":          services.RenderSubscriptions(types),
	})
}

// UpcomingEvents handles GET /api/users/{id}/events?limit=...
func (h *GuideHandler) UpcomingEvents(w http.ResponseWriter, r *http.Request) {
	platformID, ok := platformIDFromPath(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondWithError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = parsed
	}

	reply, err := h.guide.OnEventsRequested(r.Context(), platformID, limit)
	h.respondWithReply(w, r, reply, err)
}

func (h *GuideHandler) respondWithReply(w http.ResponseWriter, r *http.Request, reply services.Reply, err error) {
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newReplyResponse(reply))
}

func newReplyResponse(reply services.Reply) ReplyResponse {
	resp := ReplyResponse{
		Kind:     reply.Kind,
		Text:     reply.Text,
		Route:    reply.Route,
		Location: reply.Location,
		Outcome:  reply.Outcome,
	}
	for _, ranked := range reply.POIs {
		resp.POIs = append(resp.POIs, RankedPOIResponse{PointOfInterest: ranked.POI, Distance: ranked.Distance})
	}
	return resp
}

func platformIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	platformID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return platformID, true
}

func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	switch {
	case apperrors.IsNotFound(err) && errors.As(err, &appErr):
		respondWithError(w, http.StatusNotFound, appErr.Message)
	case apperrors.IsValidation(err) && errors.As(err, &appErr):
		respondWithError(w, http.StatusBadRequest, appErr.Message)
	case apperrors.IsConflict(err):
		respondWithError(w, http.StatusConflict, "conflict")
	default:
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
