package models

// Session is the dashboard state returned to the client.
type Session struct {
	ID        string            `json:"id"`
	Query     string            `json:"query"`
	Unit      string            `json:"unit"`
	Theme     string            `json:"theme"`
	Loading   bool              `json:"loading"`
	Error     *string           `json:"error,omitempty"`
	Current   *CurrentWeather   `json:"current,omitempty"`
	Extended  *ExtendedCoverage `json:"extended,omitempty"`
	CreatedAt Timestamp         `json:"createdAt"`
	UpdatedAt Timestamp         `json:"updatedAt"`
	FetchedAt *Timestamp        `json:"fetchedAt,omitempty"`
}

// CreatedSession is returned by POST /v1/sessions.
type CreatedSession struct {
	Session   Session   `json:"session"`
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ExpiresAt Timestamp `json:"expiresAt"`
}

// CurrentWeather is the current-conditions card, temperatures already in
// the session's display unit.
type CurrentWeather struct {
	Location      string  `json:"location"`
	Region        string  `json:"region,omitempty"`
	Country       string  `json:"country"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	Localtime     string  `json:"localtime,omitempty"`
	LastUpdated   string  `json:"lastUpdated"`
	Temperature   float64 `json:"temperature"`
	FeelsLike     float64 `json:"feelsLike"`
	UnitSymbol    string  `json:"unitSymbol"`
	Condition     string  `json:"condition"`
	ConditionCode int     `json:"conditionCode"`
	Icon          string  `json:"icon,omitempty"`
	Family        string  `json:"family"`
	Animation     string  `json:"animation,omitempty"`
	IsDay         bool    `json:"isDay"`
	Humidity      float64 `json:"humidity"`
	WindKph       float64 `json:"windKph"`
	WindDir       string  `json:"windDir"`
	GustKph       float64 `json:"gustKph"`
	PressureMb    float64 `json:"pressureMb"`
	PrecipMm      float64 `json:"precipMm"`
	VisKm         float64 `json:"visKm"`
	Cloud         float64 `json:"cloud"`
	UV            float64 `json:"uv"`
	Sunrise       string  `json:"sunrise,omitempty"`
	Sunset        string  `json:"sunset,omitempty"`
}

// ExtendedCoverage describes the span of the extended forecast.
type ExtendedCoverage struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Days     int    `json:"days"`
	RealDays int    `json:"realDays"`
}

// SearchRequest is the body of POST /v1/sessions/current/search.
type SearchRequest struct {
	Query string `json:"query"`
}

// LocateRequest is the body of POST /v1/sessions/current/locate. Without
// coordinates the client IP is used.
type LocateRequest struct {
	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`
}

// UnitRequest is the body of PUT /v1/sessions/current/unit.
type UnitRequest struct {
	Unit string `json:"unit"`
}

// ThemeRequest is the body of PUT /v1/sessions/current/theme.
type ThemeRequest struct {
	Theme string `json:"theme"`
}
