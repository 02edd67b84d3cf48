package weather

import "testing"

func TestAgriculturalAlerts(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		current  CurrentWeather
		forecast []ForecastDay
		want     []string
	}{
		{name: "calm", current: CurrentWeather{Temperature: 30, Humidity: 50}},
		{name: "boundary temperatures do not alert", current: CurrentWeather{Temperature: 35, Humidity: 70}},
		{name: "heat", current: CurrentWeather{Temperature: 36}, want: []string{"High Temperature Alert"}},
		{name: "cold", current: CurrentWeather{Temperature: 9}, want: []string{"Low Temperature Alert"}},
		{name: "pests", current: CurrentWeather{Temperature: 26, Humidity: 71}, want: []string{"Pest Favorable Conditions"}},
		{
			name:     "rain counts case insensitively",
			current:  CurrentWeather{Temperature: 20},
			forecast: []ForecastDay{{Condition: "Light RAIN"}, {Condition: "Rain"}, {Condition: "Sunny"}},
			want:     []string{"Rain Expected"},
		},
	}

	for _, tc := range cases {
		alerts := AgriculturalAlerts(tc.current, tc.forecast)
		if len(alerts) != len(tc.want) {
			t.Fatalf("%s: expected %d alerts, got %+v", tc.name, len(tc.want), alerts)
		}
		for i, title := range tc.want {
			if alerts[i].Title != title {
				t.Fatalf("%s: expected %q at %d, got %q", tc.name, title, i, alerts[i].Title)
			}
		}
	}
}

func TestAgriculturalAlertMessages(t *testing.T) {
	t.Parallel()

	alerts := AgriculturalAlerts(CurrentWeather{Temperature: 38}, []ForecastDay{{Condition: "rain"}, {Condition: "Rain"}})
	if alerts[0].Message != "Temperature is 38°C. Consider irrigation and crop protection measures." {
		t.Fatalf("unexpected heat message %q", alerts[0].Message)
	}
	if alerts[1].Type != AlertTypeInfo || alerts[1].Message != "Rain expected in 2 of the next 7 days. Plan harvesting accordingly." {
		t.Fatalf("unexpected rain alert %+v", alerts[1])
	}
}
