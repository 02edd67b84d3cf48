package controllers

import (
	"net/http"

	"github.com/smartkisan/kisan-backend/api/responses"
	"github.com/smartkisan/kisan-backend/api/validators"
	weathersvc "github.com/smartkisan/kisan-backend/internal/weather"
	"github.com/smartkisan/kisan-backend/pkg/logger"
)

func WeatherCurrent(svc weathersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		city, country := locationQuery(r)
		current, err := svc.Current(r.Context(), city, country)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, current)
	}
}

func WeatherForecast(svc weathersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		city, country := locationQuery(r)
		forecast, err := svc.Forecast(r.Context(), city, country)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, forecast)
	}
}

// WeatherAlerts returns current conditions, the forecast and the derived
// agricultural alerts in one payload.
func WeatherAlerts(svc weathersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		city, country := locationQuery(r)
		report, err := svc.Alerts(r.Context(), city, country)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

func locationQuery(r *http.Request) (string, string) {
	query := r.URL.Query()
	return validators.SanitizeString(query.Get("city"), 100), validators.SanitizeString(query.Get("country"), 2)
}
