package weather

import "fmt"

// Unit is the display unit for temperatures. It never changes stored data.
type Unit string

const (
	Celsius    Unit = "celsius"
	Fahrenheit Unit = "fahrenheit"
)

// ParseUnit parses a unit name, accepting the short forms "c" and "f".
func ParseUnit(s string) (Unit, error) {
	switch s {
	case "celsius", "c", "C":
		return Celsius, nil
	case "fahrenheit", "f", "F":
		return Fahrenheit, nil
	default:
		return "", fmt.Errorf("unknown unit %q", s)
	}
}

// Toggle returns the other unit.
func (u Unit) Toggle() Unit {
	if u == Celsius {
		return Fahrenheit
	}
	return Celsius
}

// Pick returns c for Celsius and f otherwise.
func (u Unit) Pick(c, f float64) float64 {
	if u == Fahrenheit {
		return f
	}
	return c
}

// Symbol returns the display suffix for the unit.
func (u Unit) Symbol() string {
	if u == Fahrenheit {
		return "°F"
	}
	return "°C"
}

// ToCelsius converts a temperature expressed in u to Celsius.
func (u Unit) ToCelsius(t float64) float64 {
	if u == Fahrenheit {
		return FahrenheitToCelsius(t)
	}
	return t
}

// CelsiusToFahrenheit converts using F = C*9/5 + 32.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// FahrenheitToCelsius converts using C = (F-32)*5/9.
func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}
