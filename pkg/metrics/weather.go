package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	WeatherSourceLive  = "live"
	WeatherSourceCache = "cache"
	WeatherSourceMock  = "mock"
)

// WeatherMetrics counts weather lookups by kind and the source that served them.
type WeatherMetrics struct {
	requests *prometheus.CounterVec
}

func NewWeatherMetrics(reg prometheus.Registerer) *WeatherMetrics {
	if reg == nil {
		return &WeatherMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "weather_requests_total",
		Help: "Weather lookups by kind (current, forecast) and source (live, cache, mock).",
	}, []string{"kind", "source"})
	reg.MustRegister(requests)
	return &WeatherMetrics{requests: requests}
}

func (w *WeatherMetrics) Observe(kind, source string) {
	if w == nil || w.requests == nil {
		return
	}
	w.requests.WithLabelValues(kind, source).Inc()
}
