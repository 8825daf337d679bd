package weatherapi

import "github.com/breezy/breezy/internal/weather"

// forecastResponse mirrors forecast.json, which nests days under "forecast".
type forecastResponse struct {
	Location weather.Location `json:"location"`
	Current  weather.Current  `json:"current"`
	Forecast struct {
		ForecastDay []weather.ForecastDay `json:"forecastday"`
	} `json:"forecast"`
}

// errorResponse is the provider's error envelope.
type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
