package forecast

import "github.com/breezy/breezy/internal/weather"

// span is a half-open numeric range used for uniform draws.
type span struct {
	lo, hi float64
}

// archetype is a template for a synthesized day.
type archetype struct {
	code     weather.ConditionCode
	text     string
	temp     span
	wind     span
	humidity span
	uv       span
}

func (a archetype) isRain() bool { return a.code == weather.CodePatchyRain }
func (a archetype) isSnow() bool { return a.code == weather.CodeBlowingSnow }
func (a archetype) isFog() bool  { return a.code == weather.CodeMist }

var archetypes = [...]archetype{
	{weather.CodeClear, "Sunny", span{20, 25}, span{5, 10}, span{40, 60}, span{5, 7}},
	{weather.CodePartlyCloudy, "Partly cloudy", span{18, 23}, span{10, 15}, span{50, 70}, span{4, 6}},
	{weather.CodeCloudy, "Cloudy", span{15, 20}, span{8, 12}, span{60, 80}, span{3, 5}},
	{weather.CodePatchyRain, "Light rain", span{12, 18}, span{12, 18}, span{70, 90}, span{2, 4}},
	{weather.CodeMist, "Foggy", span{10, 15}, span{3, 8}, span{85, 95}, span{1, 3}},
	{weather.CodeBlowingSnow, "Snow", span{-5, 0}, span{10, 15}, span{70, 85}, span{2, 4}},
	{weather.CodeThunder, "Thunderstorm", span{15, 22}, span{20, 30}, span{75, 90}, span{3, 5}},
}

// Placeholder astronomy for synthesized days.
const (
	placeholderSunrise   = "07:00 AM"
	placeholderSunset    = "07:00 PM"
	placeholderMoonrise  = "12:00 PM"
	placeholderMoonset   = "12:00 AM"
	placeholderMoonPhase = "Waxing Crescent"
)

var compassPoints = [...]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// compass maps a bearing in degrees to a 16-point direction.
func compass(deg float64) string {
	i := int((deg+11.25)/22.5) % len(compassPoints)
	if i < 0 {
		i += len(compassPoints)
	}
	return compassPoints[i]
}
