package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cityguide/backend/internal/domain/entities"
	"github.com/cityguide/backend/internal/domain/providers"
	"github.com/cityguide/backend/internal/infrastructure/observability"
	apperrors "github.com/cityguide/backend/pkg/errors"
)

// ReplyKind tells the messaging adapter which kind of answer it got
type ReplyKind string

const (
	// ReplyText carries a rendered answer
	ReplyText ReplyKind = "text"
	// ReplySetLocationFirst means the user has no stored location yet
	ReplySetLocationFirst ReplyKind = "set_location_first"
	// ReplyNothingNearby means the search ran but matched no POI
	ReplyNothingNearby ReplyKind = "nothing_nearby"
	// ReplyAddressNotFound means geocoding completed without a candidate
	ReplyAddressNotFound ReplyKind = "address_not_found"
	// ReplyNoRoute means the router found no route
	ReplyNoRoute ReplyKind = "no_route"
	// ReplyProviderBusy means the mapping provider was rate limited or unavailable; retrying later may help
	ReplyProviderBusy ReplyKind = "provider_busy"
)

// Reply is the structured result of an inbound request. Text is always ready to send.
type Reply struct {
	Kind     ReplyKind
	Text     string
	POIs     []RankedPOI
	Route    *providers.Route
	Location *entities.GeoPoint
	Outcome  providers.Outcome
}

// GuideOptions holds recommendation defaults
type GuideOptions struct {
	DefaultLimit     int
	DefaultRouteMode providers.RouteMode
	CityCenter       entities.GeoPoint
	EventsLocation   *time.Location
}

// GuideService is the entry point the messaging adapter calls into.
// Every dependency is injected; the service holds no per-user state of its own.
type GuideService struct {
	profiles      *ProfileService
	catalog       *CatalogService
	subscriptions *SubscriptionService
	ranker        *ProximityRanker
	geo           providers.GeolocationProvider
	metrics       *observability.GeoMetrics
	tracer        trace.Tracer
	opts          GuideOptions
	now           func() time.Time
}

// NewGuideService creates a new guide service. metrics may be nil.
func NewGuideService(
	profiles *ProfileService,
	catalog *CatalogService,
	subscriptions *SubscriptionService,
	geo providers.GeolocationProvider,
	metrics *observability.GeoMetrics,
	opts GuideOptions,
) *GuideService {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultNearestLimit
	}
	if _, ok := providers.ParseRouteMode(string(opts.DefaultRouteMode)); !ok {
		opts.DefaultRouteMode = providers.RouteModeDriving
	}

	return &GuideService{
		profiles:      profiles,
		catalog:       catalog,
		subscriptions: subscriptions,
		ranker:        NewProximityRanker(opts.DefaultLimit),
		geo:           geo,
		metrics:       metrics,
		tracer:        observability.Tracer(),
		opts:          opts,
		now:           time.Now,
	}
}

// OnUserSeen registers the user on first contact
func (s *GuideService) OnUserSeen(ctx context.Context, platformID int64, displayName string) (*entities.UserProfile, error) {
	ctx, span := s.begin(ctx, "guide.OnUserSeen", platformID)
	defer span.End()

	profile, err := s.profiles.EnsureUser(ctx, platformID, displayName)
	return profile, s.fail(ctx, span, err)
}

// OnLocationReceived stores GPS coordinates shared by the user
func (s *GuideService) OnLocationReceived(ctx context.Context, platformID int64, lat, lon float64) (Reply, error) {
	ctx, span := s.begin(ctx, "guide.OnLocationReceived", platformID)
	defer span.End()

	location := entities.GeoPoint{Latitude: lat, Longitude: lon}
	if err := s.profiles.SetLocation(ctx, platformID, location); err != nil {
		return Reply{}, s.fail(ctx, span, err)
	}

	return Reply{Kind: ReplyText, Text: MsgLocationSaved, Location: &location}, nil
}

// OnAddressReceived geocodes address text and stores the first candidate as the user's location
func (s *GuideService) OnAddressReceived(ctx context.Context, platformID int64, address string) (Reply, error) {
	ctx, span := s.begin(ctx, "guide.OnAddressReceived", platformID)
	defer span.End()

	if _, err := s.profiles.Profile(ctx, platformID); err != nil {
		return Reply{}, s.fail(ctx, span, err)
	}

	result := s.geocode(ctx, address)
	switch result.Outcome {
	case providers.OutcomeFound:
	case providers.OutcomeNoResult:
		return Reply{Kind: ReplyAddressNotFound, Text: MsgAddressNotFound, Outcome: result.Outcome}, nil
	default:
		return Reply{Kind: ReplyProviderBusy, Text: MsgProviderBusy, Outcome: result.Outcome}, nil
	}

	if err := s.profiles.SetLocation(ctx, platformID, result.Location); err != nil {
		return Reply{}, s.fail(ctx, span, err)
	}

	location := result.Location
	return Reply{Kind: ReplyText, Text: MsgLocationSaved, Location: &location, Outcome: result.Outcome}, nil
}

// OnFindNearbyRequested ranks the catalog around the user's stored location.
// The category, search_radius and result_limit preferences narrow the search when set.
func (s *GuideService) OnFindNearbyRequested(ctx context.Context, platformID int64) (Reply, error) {
	ctx, span := s.begin(ctx, "guide.OnFindNearbyRequested", platformID)
	defer span.End()

	location, err := s.profiles.Location(ctx, platformID)
	if err != nil {
		return Reply{}, s.fail(ctx, span, err)
	}
	if location == nil {
		return Reply{Kind: ReplySetLocationFirst, Text: MsgSetLocationFirst}, nil
	}

	prefs, err := s.profiles.Preferences(ctx, platformID)
	if err != nil {
		return Reply{}, s.fail(ctx, span, err)
	}

	pois, err := s.catalog.List(ctx)
	if err != nil {
		return Reply{}, s.fail(ctx, span, err)
	}

	category, _ := prefs.String(entities.PreferenceCategory)
	pois = FilterByCategory(pois, category)

	limit := s.opts.DefaultLimit
	if v, ok := prefs.Float(entities.PreferenceResultLimit); ok && v >= 1 {
		limit = int(min(v, MaxResultLimit))
	}

	var ranked []RankedPOI
	if radius, ok := prefs.Float(entities.PreferenceSearchRadius); ok && radius > 0 {
		ranked = s.ranker.WithinBox(*location, radius, pois)
		if len(ranked) > limit {
			ranked = ranked[:limit]
		}
	} else {
		ranked = s.ranker.Nearest(*location, limit, pois)
	}

	span.SetAttributes(attribute.Int("guide.results", len(ranked)))
	if len(ranked) == 0 {
		return Reply{Kind: ReplyNothingNearby, Text: MsgNothingNearby, POIs: ranked}, nil
	}

	return Reply{Kind: ReplyText, Text: RenderNearby(ranked), POIs: ranked}, nil
}

// OnRouteRequested asks for a route from the user's location to destination.
// destination may name a catalog POI or be free address text; empty means the city centre.
func (s *GuideService) OnRouteRequested(ctx context.Context, platformID int64, destination string) (Reply, error) {
	ctx, span := s.begin(ctx, "guide.OnRouteRequested", platformID)
	defer span.End()

	origin, err := s.profiles.Location(ctx, platformID)
	if err != nil {
		return Reply{}, s.fail(ctx, span, err)
	}
	if origin == nil {
		return Reply{Kind: ReplySetLocationFirst, Text: MsgSetLocationFirst}, nil
	}

	prefs, err := s.profiles.Preferences(ctx, platformID)
	if err != nil {
		return Reply{}, s.fail(ctx, span, err)
	}
	mode := s.opts.DefaultRouteMode
	if v, ok := prefs.String(entities.PreferenceRouteMode); ok {
		if parsed, ok := providers.ParseRouteMode(v); ok {
			mode = parsed
		}
	}

	target, label, outcome, err := s.resolveDestination(ctx, destination)
	if err != nil {
		return Reply{}, s.fail(ctx, span, err)
	}
	switch outcome {
	case providers.OutcomeFound:
	case providers.OutcomeNoResult:
		return Reply{Kind: ReplyNoRoute, Text: MsgNoRoute, Outcome: outcome}, nil
	default:
		return Reply{Kind: ReplyProviderBusy, Text: MsgProviderBusy, Outcome: outcome}, nil
	}

	result := s.geo.Directions(ctx, *origin, target, mode)
	s.recordOutcome(ctx, span, "directions", result.Outcome)

	switch result.Outcome {
	case providers.OutcomeFound:
		route := result.Route
		return Reply{Kind: ReplyText, Text: RenderRoute(label, mode, route), Route: &route, Outcome: result.Outcome}, nil
	case providers.OutcomeNoResult:
		return Reply{Kind: ReplyNoRoute, Text: MsgNoRoute, Outcome: result.Outcome}, nil
	default:
		return Reply{Kind: ReplyProviderBusy, Text: MsgProviderBusy, Outcome: result.Outcome}, nil
	}
}

// OnPreferenceSet stores a single preference for the user
func (s *GuideService) OnPreferenceSet(ctx context.Context, platformID int64, key string, value any) error {
	ctx, span := s.begin(ctx, "guide.OnPreferenceSet", platformID)
	defer span.End()

	return s.fail(ctx, span, s.profiles.SetPreference(ctx, platformID, key, value))
}

// OnSubscribe records an opt-in of the given type
func (s *GuideService) OnSubscribe(ctx context.Context, platformID int64, subscriptionType string) (Reply, error) {
	ctx, span := s.begin(ctx, "guide.OnSubscribe", platformID)
	defer span.End()

	if err := s.subscriptions.Subscribe(ctx, platformID, subscriptionType); err != nil {
		return Reply{}, s.fail(ctx, span, err)
	}
	return Reply{Kind: ReplyText, Text: MsgSubscribed}, nil
}

// OnListSubscriptions returns the user's subscription types
func (s *GuideService) OnListSubscriptions(ctx context.Context, platformID int64) ([]string, error) {
	ctx, span := s.begin(ctx, "guide.OnListSubscriptions", platformID)
	defer span.End()

	types, err := s.subscriptions.ListSubscriptions(ctx, platformID)
	return types, s.fail(ctx, span, err)
}

// OnEventsRequested lists upcoming events across the catalog for a known user
func (s *GuideService) OnEventsRequested(ctx context.Context, platformID int64, limit int) (Reply, error) {
	ctx, span := s.begin(ctx, "guide.OnEventsRequested", platformID)
	defer span.End()

	if _, err := s.profiles.Profile(ctx, platformID); err != nil {
		return Reply{}, s.fail(ctx, span, err)
	}

	if limit <= 0 {
		limit = s.opts.DefaultLimit
	}

	events, err := s.catalog.UpcomingEvents(ctx, s.now(), limit)
	if err != nil {
		return Reply{}, s.fail(ctx, span, err)
	}

	pois, err := s.catalog.List(ctx)
	if err != nil {
		return Reply{}, s.fail(ctx, span, err)
	}
	names := make(map[int64]string, len(pois))
	for _, p := range pois {
		names[p.ID] = p.Name
	}

	return Reply{Kind: ReplyText, Text: RenderEvents(events, names, s.opts.EventsLocation)}, nil
}

// resolveDestination turns user text into coordinates: city centre, catalog POI, then geocoder
func (s *GuideService) resolveDestination(ctx context.Context, destination string) (entities.GeoPoint, string, providers.Outcome, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return s.opts.CityCenter, MsgCityCenter, providers.OutcomeFound, nil
	}

	poi, err := s.catalog.FindByName(ctx, destination)
	switch {
	case err == nil:
		return poi.Location, poi.Name, providers.OutcomeFound, nil
	case !apperrors.IsNotFound(err) && !apperrors.IsValidation(err):
		return entities.GeoPoint{}, "", "", err
	}

	result := s.geocode(ctx, destination)
	return result.Location, destination, result.Outcome, nil
}

func (s *GuideService) geocode(ctx context.Context, address string) providers.GeocodeResult {
	result := s.geo.Geocode(ctx, address)
	s.recordOutcome(ctx, trace.SpanFromContext(ctx), "geocode", result.Outcome)
	return result
}

func (s *GuideService) recordOutcome(ctx context.Context, span trace.Span, operation string, outcome providers.Outcome) {
	s.metrics.RecordOutcome(ctx, operation, string(outcome))
	span.SetAttributes(attribute.String("geo."+operation+".outcome", string(outcome)))
	observability.LoggerFromContext(ctx).Debug().
		Str("operation", operation).
		Str("outcome", string(outcome)).
		Msg("mapping provider call finished")
}

func (s *GuideService) begin(ctx context.Context, name string, platformID int64) (context.Context, trace.Span) {
	ctx = observability.WithLogFields(ctx,
		"request_id", uuid.NewString(),
		"platform_id", strconv.FormatInt(platformID, 10),
	)
	return s.tracer.Start(ctx, name, trace.WithAttributes(attribute.Int64("guide.platform_id", platformID)))
}

// fail records err on the span and logs it; expected client errors are logged at debug
func (s *GuideService) fail(ctx context.Context, span trace.Span, err error) error {
	if err == nil {
		return nil
	}

	span.RecordError(err)
	logger := observability.LoggerFromContext(ctx)
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeNotFound, apperrors.ErrorTypeValidation:
		logger.Debug().Err(err).Msg("request rejected")
	default:
		span.SetStatus(codes.Error, err.Error())
		logger.Error().Err(err).Msg("request failed")
	}
	return err
}
