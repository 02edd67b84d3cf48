package weather

import (
	"fmt"
	"strings"
)

const (
	AlertTypeWarning = "warning"
	AlertTypeInfo    = "info"

	highTemperatureC  = 35
	lowTemperatureC   = 10
	pestHumidity      = 70
	pestTemperatureC  = 25
	rainLookaheadDays = 7
)

// AgriculturalAlerts derives farming advisories from current conditions and
// the forecast. It has no side effects.
func AgriculturalAlerts(current CurrentWeather, forecast []ForecastDay) []Alert {
	alerts := make([]Alert, 0, 4)

	if current.Temperature > highTemperatureC {
		alerts = append(alerts, Alert{
			Type:    AlertTypeWarning,
			Title:   "High Temperature Alert",
			Message: fmt.Sprintf("Temperature is %d°C. Consider irrigation and crop protection measures.", current.Temperature),
			Icon:    "🌡️",
		})
	}
	if current.Temperature < lowTemperatureC {
		alerts = append(alerts, Alert{
			Type:    AlertTypeWarning,
			Title:   "Low Temperature Alert",
			Message: fmt.Sprintf("Temperature is %d°C. Protect sensitive crops from cold stress.", current.Temperature),
			Icon:    "❄️",
		})
	}

	rainyDays := 0
	for i, day := range forecast {
		if i >= rainLookaheadDays {
			break
		}
		if strings.Contains(strings.ToLower(day.Condition), "rain") {
			rainyDays++
		}
	}
	if rainyDays > 0 {
		alerts = append(alerts, Alert{
			Type:    AlertTypeInfo,
			Title:   "Rain Expected",
			Message: fmt.Sprintf("Rain expected in %d of the next 7 days. Plan harvesting accordingly.", rainyDays),
			Icon:    "🌧️",
		})
	}

	if current.Humidity > pestHumidity && current.Temperature > pestTemperatureC {
		alerts = append(alerts, Alert{
			Type:    AlertTypeWarning,
			Title:   "Pest Favorable Conditions",
			Message: "High humidity and warm temperature may favor pest development. Monitor crops closely.",
			Icon:    "🐛",
		})
	}
	return alerts
}
