package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/cityguide/backend/internal/domain/entities"
	"github.com/cityguide/backend/internal/domain/providers"
)

// User-facing texts
const (
	MsgWelcome          = "Привет! Я бот-гид по Ростову-на-Дону.\nДоступные команды:\n/find_poi - Найти интересные места.\n/set_location - Установить ваше местоположение.\n/route - Построить маршрут.\n/help - Помощь"
	MsgSetLocationFirst = "Пожалуйста, сначала установите своё местоположение командой /set_location"
	MsgLocationSaved    = "✅ Ваше местоположение сохранено!\nТеперь вы можете использовать команду /find_poi для поиска интересных мест поблизости."
	MsgNothingNearby    = "К сожалению, поблизости не найдено интересных мест."
	MsgAddressNotFound  = "Не удалось определить местоположение по этому адресу."
	MsgNoRoute          = "Не удалось построить маршрут."
	MsgProviderBusy     = "Сервис карт сейчас недоступен, попробуйте немного позже."
	MsgSubscribed       = "Подписка оформлена."
	MsgNoSubscriptions  = "У вас пока нет подписок."
	MsgNoEvents         = "Ближайших мероприятий нет."
	MsgCityCenter       = "центра города"
)

// RenderNearby formats ranked POIs the way /find_poi answers
func RenderNearby(ranked []RankedPOI) string {
	var b strings.Builder
	b.WriteString("🏛 Ближайшие места:\n")
	for _, r := range ranked {
		p := r.POI
		fmt.Fprintf(&b, "📍 %s\n📮 Адрес: %s\n", p.Name, p.Address)
		if p.Description != "" {
			fmt.Fprintf(&b, "ℹ️ %s\n", p.Description)
		}
		fmt.Fprintf(&b, "🏷 Категория: %s\n⭐️ Рейтинг: %.1f (%d отзывов)\n", p.Category, p.Rating, p.ReviewCount)
		if p.Website != "" {
			fmt.Fprintf(&b, "🌐 %s\n", p.Website)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderRoute formats a route summary to the named destination
func RenderRoute(destination string, mode providers.RouteMode, route providers.Route) string {
	return fmt.Sprintf("Маршрут до %s (%s):\nРасстояние: %s\nВремя: %s",
		destination, routeModeLabel(mode), route.DistanceText, route.DurationText)
}

// RenderSubscriptions lists subscription types one per line
func RenderSubscriptions(types []string) string {
	if len(types) == 0 {
		return MsgNoSubscriptions
	}
	return "Ваши подписки:\n" + strings.Join(types, "\n")
}

// RenderEvents lists events with the hosting POI name when known
func RenderEvents(events []entities.Event, poiNames map[int64]string, loc *time.Location) string {
	if len(events) == 0 {
		return MsgNoEvents
	}
	if loc == nil {
		loc = time.UTC
	}

	var b strings.Builder
	b.WriteString("🎭 Ближайшие мероприятия:\n")
	for _, e := range events {
		fmt.Fprintf(&b, "🗓 %s: %s", e.ScheduledAt.In(loc).Format("02.01.2006 15:04"), e.Name)
		if name, ok := poiNames[e.POIID]; ok {
			fmt.Fprintf(&b, " (%s)", name)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func routeModeLabel(mode providers.RouteMode) string {
	switch mode {
	case providers.RouteModeWalking:
		return "пешком"
	case providers.RouteModeBiking:
		return "на велосипеде"
	default:
		return "на машине"
	}
}
