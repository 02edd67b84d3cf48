package weather

import (
	"math"
	"time"
)

const (
	DefaultCity    = "Mumbai"
	DefaultCountry = "IN"
	mockDays       = 7
)

var istZone = time.FixedZone("IST", 5*60*60+30*60)

type cityProfile struct {
	dayTemp, nightTemp int
	humidity           int
	windSpeed          float64
}

var mockCities = map[string]cityProfile{
	"Mumbai":    {dayTemp: 32, nightTemp: 28, humidity: 75, windSpeed: 8},
	"Delhi":     {dayTemp: 35, nightTemp: 30, humidity: 45, windSpeed: 12},
	"Hyderabad": {dayTemp: 34, nightTemp: 29, humidity: 55, windSpeed: 10},
}

// mockCurrent returns the deterministic day/night table entry for city.
// Unknown cities use Mumbai's profile under the requested name.
func mockCurrent(city string, now time.Time) CurrentWeather {
	profile, ok := mockCities[city]
	if !ok {
		profile = mockCities[DefaultCity]
	}
	hour := now.In(istZone).Hour()
	daytime := hour >= 6 && hour <= 18

	out := CurrentWeather{
		Temperature: profile.nightTemp,
		Humidity:    profile.humidity,
		WindSpeed:   profile.windSpeed,
		Condition:   "Clear",
		Description: "clear sky",
		Icon:        "01n",
		City:        city,
		Country:     DefaultCountry,
	}
	if daytime {
		out.Temperature = profile.dayTemp
		out.Condition = "Sunny"
		out.Icon = "01d"
	}
	return out
}

type season int

const (
	seasonSummer season = iota
	seasonMonsoon
	seasonWinter
)

func seasonOf(month time.Month) season {
	switch {
	case month >= time.March && month <= time.May:
		return seasonSummer
	case month >= time.June && month <= time.October:
		return seasonMonsoon
	default:
		return seasonWinter
	}
}

func (s season) baseTemperature() float64 {
	switch s {
	case seasonSummer:
		return 35
	case seasonMonsoon:
		return 28
	default:
		return 22
	}
}

// mockForecast builds a seasonal 7 day outlook. rnd returns values in [0,1).
func mockForecast(now time.Time, rnd func() float64) []ForecastDay {
	today := now.In(istZone)
	s := seasonOf(today.Month())
	monsoon := s == seasonMonsoon

	days := make([]ForecastDay, 0, mockDays)
	for i := 0; i < mockDays; i++ {
		date := today.AddDate(0, 0, i)

		label := date.Format("Mon, Jan 2")
		switch i {
		case 0:
			label = "Today"
		case 1:
			label = "Tomorrow"
		}

		dailyVariation := math.Sin(float64(i)/mockDays*math.Pi*2) * 3
		randomVariation := (rnd() - 0.5) * 6
		temperature := roundHalfUp(s.baseTemperature() + dailyVariation + randomVariation)

		condition, icon := mockCondition(monsoon, temperature, rnd)

		humidity := 40 + int(rnd()*40)
		if monsoon {
			humidity = 70 + int(rnd()*25)
		}

		days = append(days, ForecastDay{
			Date:        date.Format(time.DateOnly),
			Day:         label,
			Temperature: temperature,
			Condition:   condition,
			Icon:        icon,
			Humidity:    humidity,
			WindSpeed:   float64(5 + int(rnd()*15)),
		})
	}
	return days
}

func mockCondition(monsoon bool, temperature int, rnd func() float64) (string, string) {
	pick := func(threshold float64, a, b string) string {
		if rnd() > threshold {
			return a
		}
		return b
	}
	switch {
	case monsoon && rnd() > 0.6:
		return pick(0.7, "Rain", "Cloudy"), pick(0.7, "10d", "03d")
	case temperature > 33:
		return "Sunny", "01d"
	case temperature > 28:
		return pick(0.6, "Partly Cloudy", "Sunny"), pick(0.6, "02d", "01d")
	case temperature > 24:
		return pick(0.5, "Cloudy", "Partly Cloudy"), pick(0.5, "03d", "02d")
	default:
		return pick(0.7, "Rain", "Cloudy"), pick(0.7, "10d", "03d")
	}
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
