package advice

// UVLevel is the UV index category shown next to the reading.
type UVLevel string

const (
	UVLow      UVLevel = "Low"
	UVModerate UVLevel = "Moderate"
	UVHigh     UVLevel = "High"
	UVVeryHigh UVLevel = "Very High"
	UVExtreme  UVLevel = "Extreme"
)

// UVLevelFor categorizes a UV index using inclusive upper bounds 2, 5, 7, 10.
func UVLevelFor(uv float64) UVLevel {
	switch {
	case uv <= 2:
		return UVLow
	case uv <= 5:
		return UVModerate
	case uv <= 7:
		return UVHigh
	case uv <= 10:
		return UVVeryHigh
	default:
		return UVExtreme
	}
}

// UVProtection returns the sun protection advice for a UV index.
func UVProtection(uv float64) string {
	switch {
	case uv < 3:
		return "No protection needed"
	case uv < 6:
		return "Protection recommended"
	case uv < 8:
		return "Protection required"
	default:
		return "Extra protection needed"
	}
}

// AirQualityLevel is the US EPA air quality category.
type AirQualityLevel string

const (
	AQIGood               AirQualityLevel = "Good"
	AQIModerate           AirQualityLevel = "Moderate"
	AQIUnhealthySensitive AirQualityLevel = "Unhealthy for Sensitive Groups"
	AQIUnhealthy          AirQualityLevel = "Unhealthy"
	AQIVeryUnhealthy      AirQualityLevel = "Very Unhealthy"
	AQIHazardous          AirQualityLevel = "Hazardous"
)

// AirQualityLevelFor maps a US EPA index (1-6) to its category.
func AirQualityLevelFor(index int) AirQualityLevel {
	switch {
	case index <= 1:
		return AQIGood
	case index <= 2:
		return AQIModerate
	case index <= 3:
		return AQIUnhealthySensitive
	case index <= 4:
		return AQIUnhealthy
	case index <= 5:
		return AQIVeryUnhealthy
	default:
		return AQIHazardous
	}
}

// Band is a color scale step used by the forecast views, coldest or
// lowest first.
type Band string

// Temperature bands.
const (
	BandDeepFreeze Band = "deep-freeze"
	BandFreezing   Band = "freezing"
	BandCold       Band = "cold"
	BandMild       Band = "mild"
	BandWarm       Band = "warm"
	BandHot        Band = "hot"
	BandScorching  Band = "scorching"
)

// UV bands.
const (
	BandUVLow      Band = "uv-low"
	BandUVModerate Band = "uv-moderate"
	BandUVHigh     Band = "uv-high"
	BandUVVeryHigh Band = "uv-very-high"
	BandUVExtreme  Band = "uv-extreme"
)

// TemperatureBandFor buckets a Celsius temperature using exclusive upper
// bounds -10, 0, 10, 20, 30, 35.
func TemperatureBandFor(c float64) Band {
	switch {
	case c < -10:
		return BandDeepFreeze
	case c < 0:
		return BandFreezing
	case c < 10:
		return BandCold
	case c < 20:
		return BandMild
	case c < 30:
		return BandWarm
	case c < 35:
		return BandHot
	default:
		return BandScorching
	}
}

// UVBandFor buckets a UV index using exclusive upper bounds 3, 6, 8, 11.
func UVBandFor(uv float64) Band {
	switch {
	case uv < 3:
		return BandUVLow
	case uv < 6:
		return BandUVModerate
	case uv < 8:
		return BandUVHigh
	case uv < 11:
		return BandUVVeryHigh
	default:
		return BandUVExtreme
	}
}
