package geolocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cityguide/backend/internal/domain/entities"
	"github.com/cityguide/backend/internal/domain/providers"
	"github.com/cityguide/backend/internal/infrastructure/observability"
)

const (
	yandexGeocodeURL       = "https://geocode-maps.yandex.ru/1.x/"
	yandexRouterURL        = "https://router.route.maps.yandex.net/v2/route"
	defaultLanguage        = "ru_RU"
	defaultGeocodeCacheTTL = 60 * 60 * 24 * 30
	defaultHTTPTimeout     = 8 * time.Second
	maxErrorBodyBytes      = 512
)

// YandexOptions configures the Yandex Maps provider. Zero values fall back to the public endpoints.
type YandexOptions struct {
	APIKey     string
	GeocodeURL string
	RouterURL  string
	Language   string
	Timeout    time.Duration
	HTTPClient *http.Client
	Cache      providers.CacheProvider
}

// YandexGeolocationProvider implements GeolocationProvider against the Yandex geocoder and router.
type YandexGeolocationProvider struct {
	apiKey     string
	geocodeURL string
	routerURL  string
	language   string
	timeout    time.Duration
	httpClient *http.Client
	cache      providers.CacheProvider
}

// NewYandexGeolocationProvider creates a new Yandex provider
func NewYandexGeolocationProvider(opts YandexOptions) providers.GeolocationProvider {
	if strings.TrimSpace(opts.GeocodeURL) == "" {
		opts.GeocodeURL = yandexGeocodeURL
	}
	if strings.TrimSpace(opts.RouterURL) == "" {
		opts.RouterURL = yandexRouterURL
	}
	if opts.Language == "" {
		opts.Language = defaultLanguage
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultHTTPTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}

	return &YandexGeolocationProvider{
		apiKey:     opts.APIKey,
		geocodeURL: opts.GeocodeURL,
		routerURL:  opts.RouterURL,
		language:   opts.Language,
		timeout:    opts.Timeout,
		httpClient: opts.HTTPClient,
		cache:      opts.Cache,
	}
}

// Geocode resolves address to the first candidate returned by the geocoder.
func (y *YandexGeolocationProvider) Geocode(ctx context.Context, address string) providers.GeocodeResult {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return providers.GeocodeResult{Outcome: providers.OutcomeNoResult}
	}

	cacheKey := "geo:v1:geocode:" + hashKey(strings.ToLower(trimmed))
	if y.cache != nil {
		if cached, err := y.cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			var point entities.GeoPoint
			if err := json.Unmarshal(cached, &point); err == nil && point.Validate() == nil {
				return providers.GeocodeResult{Outcome: providers.OutcomeFound, Location: point}
			}
		}
	}

	params := url.Values{}
	params.Set("apikey", y.apiKey)
	params.Set("geocode", trimmed)
	params.Set("format", "json")
	params.Set("lang", y.language)

	var payload yandexGeocodeResponse
	if outcome, err := y.getJSON(ctx, y.geocodeURL+"?"+params.Encode(), nil, &payload); outcome != providers.OutcomeFound {
		y.logFailure(ctx, "geocode", outcome, err)
		return providers.GeocodeResult{Outcome: outcome, Err: err}
	}

	members := payload.Response.GeoObjectCollection.FeatureMember
	if len(members) == 0 {
		return providers.GeocodeResult{Outcome: providers.OutcomeNoResult}
	}

	point, err := parsePos(members[0].GeoObject.Point.Pos)
	if err != nil {
		y.logFailure(ctx, "geocode", providers.OutcomeNoResult, err)
		return providers.GeocodeResult{Outcome: providers.OutcomeNoResult, Err: err}
	}

	if y.cache != nil {
		if data, err := json.Marshal(point); err == nil {
			_ = y.cache.Set(ctx, cacheKey, data, defaultGeocodeCacheTTL)
		}
	}

	return providers.GeocodeResult{Outcome: providers.OutcomeFound, Location: point}
}

// Directions asks the router for a route between origin and destination.
func (y *YandexGeolocationProvider) Directions(ctx context.Context, origin, destination entities.GeoPoint, mode providers.RouteMode) providers.DirectionsResult {
	if mode == "" {
		mode = providers.RouteModeDriving
	}

	params := url.Values{}
	params.Set("waypoints", waypoint(origin)+"|"+waypoint(destination))
	params.Set("mode", string(mode))
	params.Set("lang", y.language)
	params.Set("format", "json")

	header := http.Header{}
	header.Set("apikey", y.apiKey)

	var payload yandexRouteResponse
	if outcome, err := y.getJSON(ctx, y.routerURL+"?"+params.Encode(), header, &payload); outcome != providers.OutcomeFound {
		y.logFailure(ctx, "directions", outcome, err)
		return providers.DirectionsResult{Outcome: outcome, Err: err}
	}

	if len(payload.Routes) == 0 || len(payload.Routes[0].Legs) == 0 {
		return providers.DirectionsResult{Outcome: providers.OutcomeNoResult}
	}

	leg := payload.Routes[0].Legs[0]
	return providers.DirectionsResult{
		Outcome: providers.OutcomeFound,
		Route: providers.Route{
			DistanceText: leg.Distance.Text,
			DurationText: leg.Duration.Text,
		},
	}
}

// getJSON performs a bounded GET and decodes the body into out.
// It returns OutcomeFound when out was decoded, otherwise the failure classification.
func (y *YandexGeolocationProvider) getJSON(ctx context.Context, reqURL string, header http.Header, out any) (providers.Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return providers.OutcomeUnavailable, fmt.Errorf("failed to build request: %w", err)
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return providers.OutcomeUnavailable, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return providers.OutcomeRateLimited, fmt.Errorf("request rate limited: status %d", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return providers.OutcomeUnavailable, fmt.Errorf("request returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return providers.OutcomeUnavailable, fmt.Errorf("failed to decode response: %w", err)
	}

	return providers.OutcomeFound, nil
}

func (y *YandexGeolocationProvider) logFailure(ctx context.Context, operation string, outcome providers.Outcome, err error) {
	event := observability.LoggerFromContext(ctx).Warn()
	if errors.Is(err, context.DeadlineExceeded) {
		event = event.Bool("timeout", true)
	}
	event.Err(err).
		Str("provider", "yandex").
		Str("operation", operation).
		Str("outcome", string(outcome)).
		Msg("mapping provider call did not return a result")
}

// parsePos reads the geocoder's "lon lat" pair.
func parsePos(pos string) (entities.GeoPoint, error) {
	fields := strings.Fields(pos)
	if len(fields) != 2 {
		return entities.GeoPoint{}, fmt.Errorf("malformed pos %q", pos)
	}

	lon, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return entities.GeoPoint{}, fmt.Errorf("malformed longitude in pos %q: %w", pos, err)
	}
	lat, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return entities.GeoPoint{}, fmt.Errorf("malformed latitude in pos %q: %w", pos, err)
	}

	point := entities.GeoPoint{Latitude: lat, Longitude: lon}
	if err := point.Validate(); err != nil {
		return entities.GeoPoint{}, err
	}
	return point, nil
}

// waypoint formats a point in the router's lon,lat order
func waypoint(p entities.GeoPoint) string {
	return strconv.FormatFloat(p.Longitude, 'f', -1, 64) + "," + strconv.FormatFloat(p.Latitude, 'f', -1, 64)
}

func hashKey(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

type yandexGeocodeResponse struct {
	Response struct {
		GeoObjectCollection struct {
			FeatureMember []yandexFeatureMember `json:"featureMember"`
		} `json:"GeoObjectCollection"`
	} `json:"response"`
}

type yandexFeatureMember struct {
	GeoObject struct {
		Name  string `json:"name"`
		Point struct {
			Pos string `json:"pos"`
		} `json:"Point"`
	} `json:"GeoObject"`
}

type yandexRouteResponse struct {
	Routes []yandexRoute `json:"routes"`
}

type yandexRoute struct {
	Legs []yandexLeg `json:"legs"`
}

type yandexLeg struct {
	Distance yandexText `json:"distance"`
	Duration yandexText `json:"duration"`
}

type yandexText struct {
	Text  string  `json:"text"`
	Value float64 `json:"value"`
}
