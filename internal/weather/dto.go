package weather

// CurrentWeather is the normalized current-conditions payload.
type CurrentWeather struct {
	Temperature int     `json:"temperature"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
	Condition   string  `json:"condition"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	City        string  `json:"city"`
	Country     string  `json:"country"`
}

// ForecastDay is one daily sample of the forecast.
type ForecastDay struct {
	Date        string  `json:"date"`
	Day         string  `json:"day"`
	Temperature int     `json:"temperature"`
	Condition   string  `json:"condition"`
	Icon        string  `json:"icon"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
}

type Alert struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Icon    string `json:"icon"`
}

type Report struct {
	Weather  CurrentWeather `json:"weather"`
	Forecast []ForecastDay  `json:"forecast"`
	Alerts   []Alert        `json:"alerts"`
}
