package weather

// ConditionCode is the provider's integer condition enum.
type ConditionCode int

// Condition codes referenced directly.
const (
	CodeClear        ConditionCode = 1000
	CodePartlyCloudy ConditionCode = 1003
	CodeCloudy       ConditionCode = 1006
	CodeOvercast     ConditionCode = 1009
	CodeMist         ConditionCode = 1030
	CodePatchyRain   ConditionCode = 1063
	CodeThunder      ConditionCode = 1087
	CodeBlowingSnow  ConditionCode = 1114
	CodeFog          ConditionCode = 1135
	CodeFreezingFog  ConditionCode = 1147
)

// Family groups condition codes for icon and animation selection.
type Family string

const (
	FamilyClear        Family = "CLEAR"
	FamilyCloudy       Family = "CLOUDY"
	FamilyFog          Family = "FOG"
	FamilyRain         Family = "RAIN"
	FamilySnow         Family = "SNOW"
	FamilyThunderstorm Family = "THUNDERSTORM"
)

// IsFog reports codes 1030, 1135 and 1147.
func (c ConditionCode) IsFog() bool {
	return c == CodeMist || c == CodeFog || c == CodeFreezingFog
}

// IsCloudy reports codes 1003, 1006 and 1009.
func (c ConditionCode) IsCloudy() bool {
	return c == CodePartlyCloudy || c == CodeCloudy || c == CodeOvercast
}

// IsRainFamily reports the provider's precipitation range 1063-1264.
// Snow codes fall inside this range too.
func (c ConditionCode) IsRainFamily() bool {
	return c >= 1063 && c <= 1264
}

// IsSnowFamily reports the range 1204-1237.
func (c ConditionCode) IsSnowFamily() bool {
	return c >= 1204 && c <= 1237
}

// IsThunderstorm reports the range 1273-1282.
func (c ConditionCode) IsThunderstorm() bool {
	return c >= 1273 && c <= 1282
}

// Family maps the code to the icon family used by the forecast views.
// Unknown codes fall back to cloudy.
func (c ConditionCode) Family() Family {
	switch {
	case c == CodeClear:
		return FamilyClear
	case c.IsCloudy():
		return FamilyCloudy
	case c.IsFog():
		return FamilyFog
	case c.IsSnowFamily():
		return FamilySnow
	case c.IsRainFamily():
		return FamilyRain
	case c.IsThunderstorm():
		return FamilyThunderstorm
	default:
		return FamilyCloudy
	}
}

// Animation names the background animation for current conditions, or ""
// when none applies.
func (c ConditionCode) Animation() string {
	switch {
	case c.IsSnowFamily():
		return "snow"
	case c.IsRainFamily():
		return "rain"
	case c.IsFog():
		return "fog"
	case c.IsCloudy():
		return "cloud"
	default:
		return ""
	}
}
