// Package advice derives dashboard guidance from current conditions.
package advice

import (
	"github.com/breezy/breezy/internal/weather"
)

// Kind identifies the rule that produced a tip.
type Kind string

const (
	KindHot          Kind = "hot"
	KindFreezing     Kind = "freezing"
	KindChilly       Kind = "chilly"
	KindRain         Kind = "rain"
	KindSnow         Kind = "snow"
	KindFog          Kind = "fog"
	KindThunderstorm Kind = "thunderstorm"
	KindClear        Kind = "clear"
	KindUV           Kind = "uv"
	KindWind         Kind = "wind"
	KindHumidity     Kind = "humidity"
	KindDefault      Kind = "default"
)

// Tip is one piece of guidance.
type Tip struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Thresholds for tips.
const (
	HotAboveC      = 30.0
	FreezingBelowC = 5.0
	ChillyBelowC   = 15.0
	HighUVAbove    = 7.0
	WindyAboveKph  = 40.0
	HumidAbove     = 80.0
)

// Conditions are the inputs to Tips. TempC is always Celsius.
type Conditions struct {
	Code     weather.ConditionCode
	TempC    float64
	Humidity float64
	UV       float64
	WindKph  float64
}

// FromSnapshot extracts tip inputs from a current-conditions snapshot.
func FromSnapshot(s *weather.Snapshot) Conditions {
	return Conditions{
		Code:     s.Current.Condition.Code,
		TempC:    s.Current.TempC,
		Humidity: s.Current.Humidity,
		UV:       s.Current.UV,
		WindKph:  s.Current.WindKph,
	}
}

// Tips returns guidance in display order. The list is never empty.
// Rain codes include snow, so a snow code yields both tips.
func Tips(c Conditions) []Tip {
	var tips []Tip

	switch {
	case c.TempC > HotAboveC:
		tips = append(tips, Tip{KindHot, "It's hot out there! Stay hydrated and wear light colors"})
	case c.TempC < FreezingBelowC:
		tips = append(tips, Tip{KindFreezing, "Bundle up! It's freezing cold - wear warm layers"})
	case c.TempC < ChillyBelowC:
		tips = append(tips, Tip{KindChilly, "A bit chilly today - consider bringing a jacket!"})
	}

	if c.Code.IsRainFamily() {
		tips = append(tips, Tip{KindRain, "Don't forget your umbrella! It's raining"})
	}
	if c.Code.IsSnowFamily() {
		tips = append(tips, Tip{KindSnow, "Snow day vibes! Drive carefully and wear warm boots"})
	}
	if c.Code.IsFog() {
		tips = append(tips, Tip{KindFog, "Foggy conditions ahead - drive slowly and use headlights"})
	}
	if c.Code.IsThunderstorm() {
		tips = append(tips, Tip{KindThunderstorm, "Thunderstorm alert! Stay indoors and avoid open areas"})
	}
	if c.Code == weather.CodeClear {
		tips = append(tips, Tip{KindClear, "Perfect weather for outdoor activities! Enjoy the sunshine"})
	}

	if c.UV > HighUVAbove {
		tips = append(tips, Tip{KindUV, "High UV levels! Don't forget sunscreen and sunglasses"})
	}
	if c.WindKph > WindyAboveKph {
		tips = append(tips, Tip{KindWind, "Very windy today! Hold onto your hat and be careful with umbrellas"})
	}
	if c.Humidity > HumidAbove {
		tips = append(tips, Tip{KindHumidity, "High humidity - it might feel muggy out there!"})
	}

	if len(tips) == 0 {
		tips = append(tips, Tip{KindDefault, "Great weather day! Perfect for whatever you have planned"})
	}
	return tips
}

// Report bundles everything the dashboard shows next to current conditions.
type Report struct {
	Tips            []Tip           `json:"tips"`
	UVIndex         float64         `json:"uvIndex"`
	UVLevel         UVLevel         `json:"uvLevel"`
	UVBand          Band            `json:"uvBand"`
	UVProtection    string          `json:"uvProtection"`
	TemperatureBand Band            `json:"temperatureBand"`
	AirQuality      AirQualityLevel `json:"airQuality,omitempty"`
	GustKph         float64         `json:"gustKph"`
}

// ForSnapshot builds the full report for a snapshot.
func ForSnapshot(s *weather.Snapshot) Report {
	c := FromSnapshot(s)
	r := Report{
		Tips:            Tips(c),
		UVIndex:         c.UV,
		UVLevel:         UVLevelFor(c.UV),
		UVBand:          UVBandFor(c.UV),
		UVProtection:    UVProtection(c.UV),
		TemperatureBand: TemperatureBandFor(c.TempC),
		GustKph:         s.Gust(),
	}
	if aq := s.Current.AirQuality; aq != nil {
		r.AirQuality = AirQualityLevelFor(aq.USEPAIndex)
	}
	return r
}
