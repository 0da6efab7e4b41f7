package forecast

import (
	"math"

	"github.com/couchcryptid/aloft-etl/internal/units"
)

const (
	gravity       = 9.80665 // m/s²
	dryAirR       = 287.05  // J/(kg·K)
	magnusA       = 17.62
	magnusB       = 243.12 // °C
	magnusE0      = 6.112  // hPa
	epsilon       = 0.622  // ratio of molar masses, water vapour / dry air
	envLapseRateK = 0.0065 // K/m, standard environmental lapse rate
)

// saturationVaporPressure returns e_s(T) in hPa (Magnus form).
func saturationVaporPressure(tempC float64) float64 {
	return magnusE0 * math.Exp(magnusA*tempC/(magnusB+tempC))
}

// dewpointFromRH inverts the Magnus form. RH below 1 percent is raised to 1
// so the log stays finite. RH above 100 is not capped: the dewpoint comes out
// above tempC and WindsAloftHour.Validate reports it.
func dewpointFromRH(tempC, rh float64) float64 {
	if rh == 100 {
		return tempC
	}
	rh = math.Max(1, rh)
	gamma := math.Log(rh/100) + magnusA*tempC/(magnusB+tempC)
	return magnusB * gamma / (magnusA - gamma)
}

func specificHumidity(vaporHPa, pressureHPa float64) float64 {
	return epsilon * vaporHPa / (pressureHPa - (1-epsilon)*vaporHPa)
}

func vaporPressure(q, pressureHPa float64) float64 {
	return q * pressureHPa / (epsilon + (1-epsilon)*q)
}

// pressureAtHeight applies the hypsometric (barometric) formula over dh
// metres using the mean of the two layer temperatures.
func pressureAtHeight(p0HPa, t0C, t1C, dh float64) float64 {
	meanK := units.CelsiusToKelvin((t0C + t1C) / 2)
	return p0HPa * math.Exp(-gravity*dh/(dryAirR*meanK))
}

// nearSurfaceDewpoint derives the dewpoint at a height level from the 2 m
// conditions. Specific humidity is held at its surface value while the
// temperature falls at the fixed environmental lapse rate; relative humidity
// is recomputed at the level pressure and that lapsed temperature, then turned
// into a dewpoint against the model's level temperature.
func nearSurfaceDewpoint(surfTempC, surfDewC, surfPressHPa, levelPressHPa, levelTempC, heightAGL float64) float64 {
	q := specificHumidity(saturationVaporPressure(surfDewC), surfPressHPa)
	lapsedC := surfTempC - envLapseRateK*heightAGL
	e := vaporPressure(q, levelPressHPa)
	rh := 100 * e / saturationVaporPressure(lapsedC)
	return dewpointFromRH(levelTempC, rh)
}
