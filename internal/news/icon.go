package news

import (
	"strings"

	"github.com/i474232898/weather-news-aggregation/internal/common"
)

var iconRules = []struct {
	icon     string
	keywords []string
}{
	{"🌧️", []string{"rain", "shower", "drizzle"}},
	{"⛈️", []string{"storm", "thunder", "lightning"}},
	{"❄️", []string{"snow", "blizzard", "frost"}},
	{"☀️", []string{"sun", "sunny", "clear"}},
	{"☁️", []string{"cloud", "overcast", "fog"}},
	{"💨", []string{"wind", "breeze", "gust"}},
	{"🌡️", []string{"heat", "hot", "warm"}},
	{"🧊", []string{"cold", "freeze", "chill"}},
	{"🌊", []string{"flood", "drought", "wildfire"}},
	{"🌀", []string{"hurricane", "typhoon", "cyclone"}},
	{"🌪️", []string{"tornado", "twister"}},
	{"🌫️", []string{"pollution", "smog", "air quality"}},
}

// DefaultIcon is used when no keyword matches.
const DefaultIcon = "🌤️"

// WeatherIcon picks a placeholder emoji for an article without artwork.
func WeatherIcon(title, description string) string {
	text := strings.ToLower(title + " " + description)
	for _, rule := range iconRules {
		if common.HasAny(text, rule.keywords...) {
			return rule.icon
		}
	}
	return DefaultIcon
}
