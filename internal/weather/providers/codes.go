package providers

// Condition is the shared {description, icon} vocabulary; icons are OpenWeatherMap codes.
type Condition struct {
	Description string
	Icon        string
}

var unknownCondition = Condition{Description: "unknown", Icon: "03d"}

// wmoConditions maps Open-Meteo (WMO) weather codes to the closest OpenWeatherMap condition.
var wmoConditions = map[int]Condition{
	0:  {"clear sky", "01d"},
	1:  {"mainly clear", "02d"},
	2:  {"partly cloudy", "03d"},
	3:  {"overcast clouds", "04d"},
	45: {"fog", "50d"},
	48: {"fog", "50d"},
	51: {"drizzle", "09d"},
	53: {"drizzle", "09d"},
	55: {"drizzle", "09d"},
	56: {"freezing drizzle", "13d"},
	57: {"freezing drizzle", "13d"},
	61: {"rain", "10d"},
	63: {"rain", "10d"},
	65: {"rain", "10d"},
	66: {"freezing rain", "13d"},
	67: {"freezing rain", "13d"},
	71: {"snow", "13d"},
	73: {"snow", "13d"},
	75: {"snow", "13d"},
	77: {"snow", "13d"},
	80: {"rain showers", "09d"},
	81: {"rain showers", "09d"},
	82: {"rain showers", "09d"},
	85: {"snow showers", "13d"},
	86: {"snow showers", "13d"},
	95: {"thunderstorm", "11d"},
	96: {"thunderstorm with hail", "11d"},
	99: {"thunderstorm with hail", "11d"},
}

// MapWMOCode returns the condition for an Open-Meteo weather code.
func MapWMOCode(code int) Condition {
	if c, ok := wmoConditions[code]; ok {
		return c
	}
	return unknownCondition
}
