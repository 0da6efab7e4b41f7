// Package units converts between the scalar units used by forecast sources
// and by pilots: wind speed, height, temperature, and pressure.
//
// All functions are pure. Speeds are magnitudes; passing a negative speed is a
// caller bug and is converted as-is rather than reported.
package units

const (
	kphPerMph   = 1.609344
	kphPerKnot  = 1.852
	kphPerMps   = 3.6
	metersPerFt = 0.3048
	hPaPerInHg  = 33.8638866667
)

// KphToMph converts kilometres per hour to statute miles per hour.
func KphToMph(kph float64) float64 { return kph / kphPerMph }

// MphToKph converts statute miles per hour to kilometres per hour.
func MphToKph(mph float64) float64 { return mph * kphPerMph }

// KphToKnots converts kilometres per hour to knots.
func KphToKnots(kph float64) float64 { return kph / kphPerKnot }

// KnotsToKph converts knots to kilometres per hour.
func KnotsToKph(knots float64) float64 { return knots * kphPerKnot }

// KphToMps converts kilometres per hour to metres per second.
func KphToMps(kph float64) float64 { return kph / kphPerMps }

// MpsToKph converts metres per second to kilometres per hour.
func MpsToKph(mps float64) float64 { return mps * kphPerMps }

// MphToKnots converts miles per hour to knots.
func MphToKnots(mph float64) float64 { return KphToKnots(MphToKph(mph)) }

// KnotsToMph converts knots to miles per hour.
func KnotsToMph(knots float64) float64 { return KphToMph(KnotsToKph(knots)) }

// MpsToMph converts metres per second to miles per hour.
func MpsToMph(mps float64) float64 { return KphToMph(MpsToKph(mps)) }

// MphToMps converts miles per hour to metres per second.
func MphToMps(mph float64) float64 { return KphToMps(MphToKph(mph)) }

// MpsToKnots converts metres per second to knots.
func MpsToKnots(mps float64) float64 { return KphToKnots(MpsToKph(mps)) }

// KnotsToMps converts knots to metres per second.
func KnotsToMps(knots float64) float64 { return KphToMps(KnotsToKph(knots)) }

// MetersToFeet converts metres to feet.
func MetersToFeet(m float64) float64 { return m / metersPerFt }

// FeetToMeters converts feet to metres.
func FeetToMeters(ft float64) float64 { return ft * metersPerFt }

// CelsiusToFahrenheit converts an absolute temperature.
func CelsiusToFahrenheit(c float64) float64 { return c*9/5 + 32 }

// FahrenheitToCelsius converts an absolute temperature.
func FahrenheitToCelsius(f float64) float64 { return (f - 32) * 5 / 9 }

// CelsiusDeltaToFahrenheit converts a temperature difference (spread, lapse,
// change over time). No 32° offset applies to a difference.
func CelsiusDeltaToFahrenheit(dc float64) float64 { return dc * 9 / 5 }

// FahrenheitDeltaToCelsius is the inverse of CelsiusDeltaToFahrenheit.
func FahrenheitDeltaToCelsius(df float64) float64 { return df * 5 / 9 }

// HPaToInHg converts hectopascals to inches of mercury.
func HPaToInHg(hpa float64) float64 { return hpa / hPaPerInHg }

// InHgToHPa converts inches of mercury to hectopascals.
func InHgToHPa(inHg float64) float64 { return inHg * hPaPerInHg }

// CelsiusToKelvin converts an absolute temperature.
func CelsiusToKelvin(c float64) float64 { return c + 273.15 }
