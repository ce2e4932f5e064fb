package news

import "regexp"

var (
	weatherWhitelist = regexp.MustCompile(`(?i)\b(weather|forecast|imd|rain|rainfall|showers|downpour|monsoon|cyclone|storm|thunderstorm|lightning|snow|hail|heatwave|cold\s*wave|coldwave|temperature|max\s*temp|min\s*temp|humidity|uv\s*index|aqi|air\s*quality|pollution|smog|dust\s*storm|wind\s*speed|winds?\b|gust|barometric|pressure|visibility|alerts?|yellow\s*alert|orange\s*alert|red\s*alert|climate|global\s*warming|flood|drought|wildfire|hurricane|typhoon|tornado|blizzard|frost|ice|fog|mist|haze|environment|meteorology|meteorological)\b`)
	offTopic         = regexp.MustCompile(`(?i)(ad\b|sponsored|sleepers|shoulders|iphone|android|gadget|travel|booking|hotel|celebrity|bollywood|cricket|football|movie|series|genius|sale|discount|coupon|review|gaming|stocks?|crypto)`)
)

// IsWeatherRelated keeps items whose text matches the weather vocabulary and
// none of the advertising or off-topic terms.
func IsWeatherRelated(title, description string) bool {
	text := title + " " + description
	return weatherWhitelist.MatchString(text) && !offTopic.MatchString(text)
}
