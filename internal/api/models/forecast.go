package models

// ForecastWindow is one day, week, month or year of the extended forecast.
type ForecastWindow struct {
	View        string        `json:"view"`
	Reference   string        `json:"reference"`
	Start       string        `json:"start"`
	End         string        `json:"end"`
	Title       string        `json:"title"`
	Outcome     string        `json:"outcome"`
	Unit        string        `json:"unit"`
	Previous    string        `json:"previous"`
	Next        string        `json:"next"`
	Days        []ForecastDay `json:"days"`
	CurrentHour *ForecastHour `json:"currentHour,omitempty"`
}

// ForecastDay is a day summary in the display unit.
type ForecastDay struct {
	Date            string         `json:"date"`
	Weekday         string         `json:"weekday"`
	MaxTemp         float64        `json:"maxTemp"`
	MinTemp         float64        `json:"minTemp"`
	Condition       string         `json:"condition"`
	ConditionCode   int            `json:"conditionCode"`
	Family          string         `json:"family"`
	ChanceOfRain    float64        `json:"chanceOfRain"`
	Humidity        float64        `json:"humidity"`
	MaxWindKph      float64        `json:"maxWindKph"`
	UV              float64        `json:"uv"`
	UVBand          string         `json:"uvBand"`
	TemperatureBand string         `json:"temperatureBand"`
	Sunrise         string         `json:"sunrise"`
	Sunset          string         `json:"sunset"`
	MoonPhase       string         `json:"moonPhase"`
	Hours           []ForecastHour `json:"hours,omitempty"`
}

// ForecastHour is one hourly slot in the display unit.
type ForecastHour struct {
	Time         string  `json:"time"`
	Temperature  float64 `json:"temperature"`
	FeelsLike    float64 `json:"feelsLike"`
	Condition    string  `json:"condition"`
	Family       string  `json:"family"`
	IsDay        bool    `json:"isDay"`
	ChanceOfRain float64 `json:"chanceOfRain"`
	WindKph      float64 `json:"windKph"`
	WindDir      string  `json:"windDir,omitempty"`
	Humidity     float64 `json:"humidity"`
	UV           float64 `json:"uv"`
}

// YearView is the twelve-month summary.
type YearView struct {
	Year     int            `json:"year"`
	Unit     string         `json:"unit"`
	Outcome  string         `json:"outcome"`
	Previous int            `json:"previous"`
	Next     int            `json:"next"`
	Months   []MonthSummary `json:"months"`
}

// MonthSummary is one month of the year view.
type MonthSummary struct {
	Month               int    `json:"month"`
	Name                string `json:"name"`
	AvgHigh             int    `json:"avgHigh"`
	TemperatureBand     string `json:"temperatureBand"`
	MostCommonCondition string `json:"mostCommonCondition"`
	Days                int    `json:"days"`
}

// MonthGrid is the 6x7 calendar view of one month.
type MonthGrid struct {
	Year     int          `json:"year"`
	Month    int          `json:"month"`
	Title    string       `json:"title"`
	Outcome  string       `json:"outcome"`
	Previous string       `json:"previous"`
	Next     string       `json:"next"`
	Weeks    [][]GridCell `json:"weeks"`
}

// GridCell is one day of the month grid.
type GridCell struct {
	Date          string   `json:"date"`
	Day           int      `json:"day"`
	InMonth       bool     `json:"inMonth"`
	Today         bool     `json:"today"`
	MaxTemp       *float64 `json:"maxTemp,omitempty"`
	Family        string   `json:"family,omitempty"`
	ConditionCode int      `json:"conditionCode,omitempty"`
}

// Advice is the guidance panel for the current conditions.
type Advice struct {
	Tips            []AdviceTip `json:"tips"`
	UVIndex         float64     `json:"uvIndex"`
	UVLevel         string      `json:"uvLevel"`
	UVBand          string      `json:"uvBand"`
	UVProtection    string      `json:"uvProtection"`
	TemperatureBand string      `json:"temperatureBand"`
	AirQuality      string      `json:"airQuality,omitempty"`
	GustKph         float64     `json:"gustKph"`
}

// AdviceTip is one tip.
type AdviceTip struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
