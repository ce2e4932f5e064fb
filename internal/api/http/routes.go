package httpapi

import (
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-news-aggregation/internal/location"
	"github.com/i474232898/weather-news-aggregation/internal/logger"
	"github.com/i474232898/weather-news-aggregation/internal/news"
	"github.com/i474232898/weather-news-aggregation/internal/weather"
	"github.com/i474232898/weather-news-aggregation/internal/weather/providers"
)

var validate = validator.New()

// Handlers groups the dependencies of the API routes.
type Handlers struct {
	Weather  *weather.Service
	Location *location.Resolver
	News     *news.Aggregator
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, h Handlers) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		q, err := parseLocationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshot, err := h.Weather.Current(c.UserContext(), q.toLocation())
		if err != nil {
			return err
		}
		return c.JSON(snapshot)
	})

	v1.Get("/weather/hourly", func(c *fiber.Ctx) error {
		loc, err := h.coordsFor(c)
		if err != nil {
			return err
		}
		forecast, err := h.Weather.Hourly(c.UserContext(), loc)
		if err != nil {
			return err
		}
		return c.JSON(forecast)
	})

	v1.Get("/weather/daily", func(c *fiber.Ctx) error {
		loc, err := h.coordsFor(c)
		if err != nil {
			return err
		}
		forecast, err := h.Weather.Daily(c.UserContext(), loc)
		if err != nil {
			return err
		}
		return c.JSON(forecast)
	})

	// Raw 3-hour steps from the primary only; no fallback.
	v1.Get("/weather/forecast", func(c *fiber.Ctx) error {
		loc, err := h.coordsFor(c)
		if err != nil {
			return err
		}
		samples, err := h.Weather.Samples(c.UserContext(), loc)
		if err != nil {
			return err
		}
		return c.JSON(samples)
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		loc, err := h.coordsFor(c)
		if err != nil {
			return err
		}
		history, err := h.Weather.History(c.UserContext(), loc)
		if err != nil {
			return err
		}
		return c.JSON(history)
	})

	v1.Get("/location", func(c *fiber.Ctx) error {
		var q deviceQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ctx := c.UserContext()
		pos, err := h.Location.Locate(ctx, q.device(), publicIP(c.IP()))
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"position":   pos,
			"place":      h.Location.PlaceName(ctx, pos.Latitude, pos.Longitude),
			"permission": h.Location.CheckPermission(ctx, location.ReportedPermission(q.Permission)),
		})
	})

	v1.Get("/geocode", func(c *fiber.Ctx) error {
		city := strings.TrimSpace(c.Query("city"))
		if err := validate.Var(city, "required,max=100"); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "city query parameter is required")
		}

		place, err := h.Location.Geocode(c.UserContext(), city)
		if err != nil {
			return err
		}
		return c.JSON(place)
	})

	v1.Get("/news", func(c *fiber.Ctx) error {
		digest, err := h.News.Aggregate(c.UserContext())
		if err != nil {
			logger.With("http").WithError(err).Error("news aggregation failed")
			return fiber.NewError(fiber.StatusBadGateway, "failed to load news")
		}
		return c.JSON(digest)
	})
}

// coordsFor resolves the request location to coordinates, geocoding a city name first.
func (h Handlers) coordsFor(c *fiber.Ctx) (weather.Location, error) {
	q, err := parseLocationQuery(c)
	if err != nil {
		return weather.Location{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	loc := q.toLocation()
	if loc.HasCoords() {
		return loc, nil
	}

	place, err := h.Location.Geocode(c.UserContext(), loc.City)
	if err != nil {
		return weather.Location{}, err
	}
	return weather.AtCoords(place.Latitude, place.Longitude), nil
}

// ErrorHandler renders every error as {"error": true, "message": ...} with a
// status derived from the error type.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	body := fiber.Map{
		"error":   true,
		"message": err.Error(),
	}

	var (
		fiberErr  *fiber.Error
		chainErr  *weather.ChainError
		locErr    *location.LocationError
		statusErr *providers.StatusError
	)
	switch {
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
	case errors.As(err, &locErr):
		code = fiber.StatusServiceUnavailable
		body["suggestion"] = locErr.Suggestion
	case errors.Is(err, weather.ErrCityNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, weather.ErrLocationRequired), errors.Is(err, weather.ErrCoordsRequired):
		code = fiber.StatusBadRequest
	case errors.Is(err, weather.ErrUnsupported):
		code = fiber.StatusServiceUnavailable
	case errors.As(err, &chainErr), errors.As(err, &statusErr):
		code = fiber.StatusBadGateway
	}

	if code >= fiber.StatusInternalServerError {
		logger.With("http").WithError(err).WithField("path", c.Path()).Error("request failed")
	}
	return c.Status(code).JSON(body)
}

// locationQuery holds query parameters for identifying a location.
type locationQuery struct {
	Lat     *float64 `validate:"required_without=City,omitempty,gte=-90,lte=90"`
	Lon     *float64 `validate:"required_with=Lat,omitempty,gte=-180,lte=180"`
	City    string   `validate:"required_without=Lat,omitempty,max=100"`
	Country string   `validate:"omitempty,max=64"`
}

func (l locationQuery) toLocation() weather.Location {
	if l.Lat != nil && l.Lon != nil {
		return weather.AtCoords(*l.Lat, *l.Lon)
	}
	return weather.InCity(l.City, l.Country)
}

func parseLocationQuery(c *fiber.Ctx) (locationQuery, error) {
	var q locationQuery
	var err error

	if q.Lat, err = queryFloat(c, "lat"); err != nil {
		return q, err
	}
	if q.Lon, err = queryFloat(c, "lon"); err != nil {
		return q, err
	}
	q.City = strings.TrimSpace(c.Query("city"))
	q.Country = strings.TrimSpace(c.Query("country"))

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// deviceQuery carries what the client measured with its own geolocation API.
type deviceQuery struct {
	Lat        *float64 `validate:"omitempty,gte=-90,lte=90"`
	Lon        *float64 `validate:"required_with=Lat,omitempty,gte=-180,lte=180"`
	Accuracy   float64  `validate:"gte=0"`
	GeoError   int      `validate:"gte=0,lte=4"`
	Permission string   `validate:"omitempty,oneof=granted denied prompt"`
}

func (d *deviceQuery) bind(c *fiber.Ctx) error {
	var err error
	if d.Lat, err = queryFloat(c, "lat"); err != nil {
		return err
	}
	if d.Lon, err = queryFloat(c, "lon"); err != nil {
		return err
	}
	if acc, err := queryFloat(c, "accuracy"); err != nil {
		return err
	} else if acc != nil {
		d.Accuracy = *acc
	}
	if raw := c.Query("geo_error"); raw != "" {
		if d.GeoError, err = strconv.Atoi(raw); err != nil {
			return errors.New("invalid geo_error; use 1, 2, 3 or 4")
		}
	}
	d.Permission = strings.ToLower(strings.TrimSpace(c.Query("permission")))

	return validate.Struct(d)
}

func (d deviceQuery) device() location.DeviceLocator {
	return location.ReportedDevice{
		Lat:       d.Lat,
		Lon:       d.Lon,
		Accuracy:  d.Accuracy,
		ErrorCode: location.ErrorCode(d.GeoError),
	}
}

func queryFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.New("invalid " + key + "; must be a number")
	}
	return &v, nil
}

// publicIP returns ip when it is routable, so IP geolocation can look it up;
// otherwise "" and the service locates the caller itself.
func publicIP(ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() || parsed.IsLinkLocalUnicast() {
		return ""
	}
	return parsed.String()
}
