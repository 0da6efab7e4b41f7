package forecast

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// Profile describes the vertical ladder requested from a gridded model.
// Pressure levels run from the surface upward (descending hPa); height levels
// are metres above ground, ascending.
type Profile struct {
	Model          string `yaml:"model" default:"gfs_seamless" validate:"required"`
	PressureLevels []int  `yaml:"pressure_levels" default:"[1000,975,950,925,900,850,800,700,600,500,400,300,250]" validate:"min=1,dive,gt=0,lte=1100"`
	HeightLevels   []int  `yaml:"height_levels" default:"[80,120,180]" validate:"min=1,dive,gt=0"`
	ForecastDays   int    `yaml:"forecast_days" default:"3" validate:"gte=1,lte=16"`
}

var validate = validator.New()

// DefaultProfile returns the built-in GFS ladder.
func DefaultProfile() Profile {
	var p Profile
	if err := defaults.Set(&p); err != nil {
		panic(fmt.Sprintf("default profile: %v", err))
	}
	return p
}

// ApplyDefaults fills unset fields and validates the result.
func (p *Profile) ApplyDefaults() error {
	if err := defaults.Set(p); err != nil {
		return fmt.Errorf("apply profile defaults: %w", err)
	}
	return p.Validate()
}

// Validate checks field ranges and ladder ordering.
func (p Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	for i := 1; i < len(p.PressureLevels); i++ {
		if p.PressureLevels[i] >= p.PressureLevels[i-1] {
			return errors.New("invalid profile: pressure_levels must be strictly descending")
		}
	}
	for i := 1; i < len(p.HeightLevels); i++ {
		if p.HeightLevels[i] <= p.HeightLevels[i-1] {
			return errors.New("invalid profile: height_levels must be strictly ascending")
		}
	}
	return nil
}

// MaxHeightLevel is the highest near-surface height level in metres AGL.
func (p Profile) MaxHeightLevel() float64 {
	if len(p.HeightLevels) == 0 {
		return 0
	}
	return float64(slices.Max(p.HeightLevels))
}

// HourlyVariables lists every hourly series the normalizer consumes, in the
// order a request should name them.
func (p Profile) HourlyVariables() []string {
	vars := []string{
		VarTemperature2m, VarDewpoint2m, VarRelativeHumidity2m,
		VarSurfacePressure, VarPressureMSL,
		VarWindSpeed10m, VarWindDirection10m,
		VarCAPE, VarCIN,
	}
	for _, h := range p.HeightLevels {
		vars = append(vars,
			heightVar("temperature", h),
			heightVar("wind_speed", h),
			heightVar("wind_direction", h),
		)
	}
	for _, lvl := range p.PressureLevels {
		vars = append(vars,
			pressureVar("temperature", lvl),
			pressureVar("relative_humidity", lvl),
			pressureVar("wind_speed", lvl),
			pressureVar("wind_direction", lvl),
			pressureVar("geopotential_height", lvl),
		)
	}
	return vars
}

func heightVar(name string, meters int) string {
	return name + "_" + strconv.Itoa(meters) + "m"
}

func pressureVar(name string, hpa int) string {
	return name + "_" + strconv.Itoa(hpa) + "hPa"
}
