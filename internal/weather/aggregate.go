package weather

import (
	"math"
	"time"
)

// Round rounds half up (towards +Inf), the way the client has always displayed values:
// 2.5 -> 3, -2.5 -> -2.
func Round(v float64) int {
	return int(math.Floor(v + 0.5))
}

// RoundTenth rounds to one decimal place, half up.
func RoundTenth(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

// GroupDaily buckets forecast samples by calendar date in zone and reduces each
// bucket to a DailyPoint: high = max, low = min, description/icon from the sample
// at index floor(n/2), humidity/wind/pressure = arithmetic mean. Days keep the order
// in which they first appear; at most limit days are returned (limit <= 0 = all).
func GroupDaily(readings []ProviderReading, zone *time.Location, limit int) []DailyPoint {
	if zone == nil {
		zone = time.UTC
	}

	type bucket struct {
		date     time.Time
		readings []ProviderReading
	}

	var (
		order   []string
		buckets = make(map[string]*bucket)
	)

	for _, r := range readings {
		ts := r.Timestamp.In(zone)
		k := ts.Format("2006-01-02")

		b, ok := buckets[k]
		if !ok {
			b = &bucket{date: ts}
			buckets[k] = b
			order = append(order, k)
		}
		b.readings = append(b.readings, r)
	}

	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}

	days := make([]DailyPoint, 0, len(order))
	for _, k := range order {
		days = append(days, summarizeDay(buckets[k].date, buckets[k].readings))
	}
	return days
}

func summarizeDay(date time.Time, readings []ProviderReading) DailyPoint {
	var (
		sumHumidity float64
		sumWind     float64
		sumPressure float64
		high        = math.Inf(-1)
		low         = math.Inf(1)
	)

	for _, r := range readings {
		high = math.Max(high, r.TemperatureC)
		low = math.Min(low, r.TemperatureC)
		sumHumidity += r.HumidityPct
		sumWind += r.WindSpeed
		sumPressure += r.PressureHpa
	}

	n := float64(len(readings))
	mid := readings[len(readings)/2]

	return DailyPoint{
		Date:          date,
		Day:           date.Weekday().String(),
		Label:         date.Format("Jan 2"),
		High:          Round(high),
		Low:           Round(low),
		Description:   mid.Description,
		Icon:          mid.Icon,
		IconURL:       IconURL(mid.Icon),
		Humidity:      Round(sumHumidity / n),
		WindSpeed:     Round(sumWind / n),
		WindSpeedUnit: UnitMetersPerSecond,
		Pressure:      Round(sumPressure / n),
	}
}
