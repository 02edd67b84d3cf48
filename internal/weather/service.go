package weather

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/smartkisan/kisan-backend/pkg/logger"
	"github.com/smartkisan/kisan-backend/pkg/metrics"
	"github.com/smartkisan/kisan-backend/pkg/openweather"
	"github.com/smartkisan/kisan-backend/pkg/redis"
)

const (
	kindCurrent  = "current"
	kindForecast = "forecast"

	forecastSampleStride = 8
)

// Service serves weather data and agricultural advisories. Every lookup
// succeeds; upstream failures degrade to mock data.
type Service interface {
	Current(ctx context.Context, city, country string) (CurrentWeather, error)
	Forecast(ctx context.Context, city, country string) ([]ForecastDay, error)
	Alerts(ctx context.Context, city, country string) (Report, error)
}

// Upstream is the live provider. A nil Upstream means mock mode.
type Upstream interface {
	Current(ctx context.Context, city, country string) (*openweather.Current, error)
	Forecast(ctx context.Context, city, country string) ([]openweather.Conditions, error)
}

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	WeatherKey(kind, city, country string) string
}

type ServiceParams struct {
	Upstream Upstream
	Cache    cacheStore
	CacheTTL time.Duration
	Metrics  *metrics.WeatherMetrics
	Logger   *logger.Logger
	Now      func() time.Time
	Rand     func() float64
}

type service struct {
	upstream Upstream
	cache    cacheStore
	cacheTTL time.Duration
	metrics  *metrics.WeatherMetrics
	logg     *logger.Logger
	now      func() time.Time
	rnd      func() float64
}

func NewService(p ServiceParams) (Service, error) {
	if p.Logger == nil {
		return nil, errors.New("logger required")
	}
	s := &service{
		upstream: p.Upstream,
		cache:    p.Cache,
		cacheTTL: p.CacheTTL,
		metrics:  p.Metrics,
		logg:     p.Logger,
		now:      p.Now,
		rnd:      p.Rand,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.rnd == nil {
		s.rnd = rand.Float64
	}
	return s, nil
}

func normalize(city, country string) (string, string) {
	city = strings.TrimSpace(city)
	if city == "" {
		city = DefaultCity
	}
	country = strings.TrimSpace(country)
	if country == "" {
		country = DefaultCountry
	}
	return city, country
}

func (s *service) Current(ctx context.Context, city, country string) (CurrentWeather, error) {
	city, country = normalize(city, country)

	var cached CurrentWeather
	if s.fromCache(ctx, kindCurrent, city, country, &cached) {
		return cached, nil
	}

	if s.upstream != nil {
		live, err := s.upstream.Current(ctx, city, country)
		if err == nil {
			out := CurrentWeather{
				Temperature: roundHalfUp(live.Temperature),
				Humidity:    live.Humidity,
				WindSpeed:   live.WindSpeed,
				Condition:   live.Condition,
				Description: live.Description,
				Icon:        live.Icon,
				City:        live.City,
				Country:     live.Country,
			}
			s.store(ctx, kindCurrent, city, country, out)
			s.metrics.Observe(kindCurrent, metrics.WeatherSourceLive)
			return out, nil
		}
		s.logFallback(ctx, kindCurrent, err)
	}

	s.metrics.Observe(kindCurrent, metrics.WeatherSourceMock)
	return mockCurrent(city, s.now()), nil
}

func (s *service) Forecast(ctx context.Context, city, country string) ([]ForecastDay, error) {
	city, country = normalize(city, country)

	var cached []ForecastDay
	if s.fromCache(ctx, kindForecast, city, country, &cached) {
		return cached, nil
	}

	if s.upstream != nil {
		list, err := s.upstream.Forecast(ctx, city, country)
		if err == nil {
			out := dailySamples(list)
			s.store(ctx, kindForecast, city, country, out)
			s.metrics.Observe(kindForecast, metrics.WeatherSourceLive)
			return out, nil
		}
		s.logFallback(ctx, kindForecast, err)
	}

	s.metrics.Observe(kindForecast, metrics.WeatherSourceMock)
	return mockForecast(s.now(), s.rnd), nil
}

// Alerts fetches current conditions and the forecast concurrently.
func (s *service) Alerts(ctx context.Context, city, country string) (Report, error) {
	var report Report
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		current, err := s.Current(gctx, city, country)
		report.Weather = current
		return err
	})
	g.Go(func() error {
		forecast, err := s.Forecast(gctx, city, country)
		report.Forecast = forecast
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	report.Alerts = AgriculturalAlerts(report.Weather, report.Forecast)
	return report, nil
}

// dailySamples keeps every 8th 3-hourly slot, at most 7 days.
func dailySamples(list []openweather.Conditions) []ForecastDay {
	out := make([]ForecastDay, 0, mockDays)
	for i := 0; i < len(list) && len(out) < mockDays; i += forecastSampleStride {
		item := list[i]
		out = append(out, ForecastDay{
			Date:        item.Time.Format(time.DateOnly),
			Day:         item.Time.Format("Mon"),
			Temperature: roundHalfUp(item.Temperature),
			Condition:   item.Condition,
			Icon:        item.Icon,
			Humidity:    item.Humidity,
			WindSpeed:   item.WindSpeed,
		})
	}
	return out
}

func (s *service) fromCache(ctx context.Context, kind, city, country string, dst any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, s.cache.WeatherKey(kind, city, country))
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logg.Warn(s.logg.WithField(ctx, "kind", kind), "weather cache read failed: "+err.Error())
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false
	}
	s.metrics.Observe(kind, metrics.WeatherSourceCache)
	return true
}

func (s *service) store(ctx context.Context, kind, city, country string, value any) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.WeatherKey(kind, city, country), string(payload), s.cacheTTL); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "kind", kind), "weather cache write failed: "+err.Error())
	}
}

func (s *service) logFallback(ctx context.Context, kind string, err error) {
	ctx = s.logg.WithFields(ctx, map[string]any{"kind": kind, "error": err.Error()})
	s.logg.Warn(ctx, "weather upstream unavailable, serving mock data")
}
