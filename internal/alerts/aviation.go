package alerts

import (
	"reflect"
	"time"
)

// gairmetValidity is the fixed span of one G-AIRMET snapshot.
const gairmetValidity = 3 * time.Hour

// LatLon is one polygon vertex of an advisory area.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// SigmetHazard is the hazard of a domestic SIGMET or outlook.
type SigmetHazard string

const (
	SigmetConvective          SigmetHazard = "CONVECTIVE"
	SigmetTurbulence          SigmetHazard = "TURB"
	SigmetIcing               SigmetHazard = "ICE"
	SigmetIFR                 SigmetHazard = "IFR"
	SigmetMountainObscuration SigmetHazard = "MTN OBSCN"
	SigmetAsh                 SigmetHazard = "ASH"
)

// Sigmet types as published in the airSigmetType field.
const (
	SigmetTypeSigmet  = "SIGMET"
	SigmetTypeOutlook = "OUTLOOK"
)

// Sigmet is a domestic SIGMET, convective SIGMET, or convective outlook.
type Sigmet struct {
	SeriesID      string       `json:"seriesId,omitempty"`
	Type          string       `json:"airSigmetType"`
	Hazard        SigmetHazard `json:"hazard"`
	ValidTimeFrom time.Time    `json:"validTimeFrom"`
	ValidTimeTo   time.Time    `json:"validTimeTo"`
	AltitudeLow   *int         `json:"altitudeLow1,omitempty"`
	AltitudeHigh  *int         `json:"altitudeHi1,omitempty"`
	RawText       string       `json:"rawAirSigmet"`
	Coords        []LatLon     `json:"coords,omitempty"`
}

func (s Sigmet) sealed() {}

func (s Sigmet) Kind() Kind { return KindSigmet }

func (s Sigmet) ID() string {
	return generateID(KindSigmet, s.Type, s.Hazard, s.SeriesID, s.ValidTimeFrom, s.RawText, s.Coords)
}

func (s Sigmet) Interval() Interval {
	return Interval{Start: s.ValidTimeFrom, End: s.ValidTimeTo}
}

// IsOutlook reports whether this is an outlook rather than a live SIGMET.
func (s Sigmet) IsOutlook() bool { return s.Type == SigmetTypeOutlook }

// IsConvective reports a live convective SIGMET (not an outlook).
func (s Sigmet) IsConvective() bool {
	return s.Hazard == SigmetConvective && s.Type == SigmetTypeSigmet
}

// IsConvectiveOutlook reports a convective SIGMET outlook.
func (s Sigmet) IsConvectiveOutlook() bool {
	return s.Hazard == SigmetConvective && s.IsOutlook()
}

func (s Sigmet) Severity() Severity {
	switch s.Hazard {
	case SigmetConvective:
		if s.IsOutlook() {
			return SeverityModerate
		}
		return SeverityExtreme
	case SigmetAsh:
		return SeverityExtreme
	case SigmetTurbulence, SigmetIcing:
		return SeveritySevere
	case SigmetIFR, SigmetMountainObscuration:
		return SeverityModerate
	default:
		return SeverityUnknown
	}
}

func (s Sigmet) Dangerous() bool { return s.Severity() >= SeveritySevere }

// GAirmetHazard is the hazard of a graphical AIRMET.
type GAirmetHazard string

const (
	GAirmetTurbulenceHigh      GAirmetHazard = "TURB-HI"
	GAirmetTurbulenceLow       GAirmetHazard = "TURB-LO"
	GAirmetLowLevelWindShear   GAirmetHazard = "LLWS"
	GAirmetSurfaceWind         GAirmetHazard = "SFC_WND"
	GAirmetIcing               GAirmetHazard = "ICE"
	GAirmetFreezingLevel       GAirmetHazard = "FZLVL"
	GAirmetMultiFreezingLevel  GAirmetHazard = "M_FZLVL"
	GAirmetIFR                 GAirmetHazard = "IFR"
	GAirmetMountainObscuration GAirmetHazard = "MT_OBSC"
)

// GAirmet is one snapshot of a graphical AIRMET. The issuing model publishes
// discrete snapshots, each valid for three hours from ValidTime.
type GAirmet struct {
	Tag          string        `json:"tag"`
	Product      string        `json:"product"`
	Hazard       GAirmetHazard `json:"hazard"`
	IssueTime    time.Time     `json:"issueTime"`
	ForecastHour int           `json:"forecast"`
	ValidTime    time.Time     `json:"validTime"`
	Top          string        `json:"top,omitempty"`
	Base         string        `json:"base,omitempty"`
	DueTo        string        `json:"dueTo,omitempty"`
	Coords       []LatLon      `json:"coords,omitempty"`
}

func (g GAirmet) sealed() {}

func (g GAirmet) Kind() Kind { return KindGAirmet }

func (g GAirmet) ID() string {
	return generateID(KindGAirmet, g.Tag, g.Product, g.Hazard, g.IssueTime, g.ForecastHour, g.ValidTime, g.Coords)
}

func (g GAirmet) Interval() Interval {
	return Interval{Start: g.ValidTime, End: g.ValidTime.Add(gairmetValidity)}
}

func (g GAirmet) Severity() Severity {
	switch g.Hazard {
	case GAirmetLowLevelWindShear, GAirmetSurfaceWind:
		return SeveritySevere
	case GAirmetTurbulenceHigh, GAirmetTurbulenceLow, GAirmetIcing:
		return SeverityModerate
	case GAirmetIFR, GAirmetMountainObscuration, GAirmetFreezingLevel, GAirmetMultiFreezingLevel:
		return SeverityMinor
	default:
		return SeverityUnknown
	}
}

func (g GAirmet) Dangerous() bool { return g.Severity() >= SeveritySevere }

// samePayload compares two snapshots ignoring their issue, forecast, and
// valid times.
func (g GAirmet) samePayload(o GAirmet) bool {
	return reflect.DeepEqual(g.payload(), o.payload())
}

func (g GAirmet) payload() GAirmet {
	g.IssueTime = time.Time{}
	g.ForecastHour = 0
	g.ValidTime = time.Time{}
	return g
}

// CWAHazard is the hazard of a center weather advisory.
type CWAHazard string

const (
	CWAThunderstorm  CWAHazard = "TS"
	CWATurbulence    CWAHazard = "TURB"
	CWAIcing         CWAHazard = "ICE"
	CWAIFR           CWAHazard = "IFR"
	CWAPrecipitation CWAHazard = "PCPN"
)

// CWA is a center weather advisory.
type CWA struct {
	CWSU          string    `json:"cwsu"`
	Name          string    `json:"name,omitempty"`
	SeriesID      int       `json:"seriesId"`
	Hazard        CWAHazard `json:"hazard"`
	ValidTimeFrom time.Time `json:"validTimeFrom"`
	ValidTimeTo   time.Time `json:"validTimeTo"`
	Text          string    `json:"cwaText"`
	Coords        []LatLon  `json:"coords,omitempty"`
}

func (c CWA) sealed() {}

func (c CWA) Kind() Kind { return KindCWA }

func (c CWA) ID() string {
	return generateID(KindCWA, c.CWSU, c.SeriesID, c.ValidTimeFrom, c.Coords)
}

func (c CWA) Interval() Interval {
	return Interval{Start: c.ValidTimeFrom, End: c.ValidTimeTo}
}

func (c CWA) Severity() Severity {
	switch c.Hazard {
	case CWAThunderstorm, CWATurbulence, CWAIcing:
		return SeveritySevere
	case CWAIFR, CWAPrecipitation:
		return SeverityModerate
	default:
		return SeverityUnknown
	}
}

func (c CWA) Dangerous() bool { return c.Severity() >= SeveritySevere }

// ISigmetHazard is the hazard of an international SIGMET.
type ISigmetHazard string

const (
	ISigmetThunderstorm     ISigmetHazard = "TS"
	ISigmetTropicalCyclone  ISigmetHazard = "TC"
	ISigmetVolcanicAsh      ISigmetHazard = "VA"
	ISigmetTurbulence       ISigmetHazard = "TURB"
	ISigmetIcing            ISigmetHazard = "ICE"
	ISigmetMountainWave     ISigmetHazard = "MTW"
	ISigmetDustStorm        ISigmetHazard = "DS"
	ISigmetSandStorm        ISigmetHazard = "SS"
	ISigmetRadioactiveCloud ISigmetHazard = "RDOACT CLD"
)

// ISigmet is an international SIGMET.
type ISigmet struct {
	FIRID         string        `json:"firId"`
	FIRName       string        `json:"firName,omitempty"`
	SeriesID      string        `json:"seriesId"`
	Hazard        ISigmetHazard `json:"hazard"`
	Qualifier     string        `json:"qualifier,omitempty"`
	ValidTimeFrom time.Time     `json:"validTimeFrom"`
	ValidTimeTo   time.Time     `json:"validTimeTo"`
	RawText       string        `json:"rawSigmet"`
	Coords        []LatLon      `json:"coords,omitempty"`
}

func (s ISigmet) sealed() {}

func (s ISigmet) Kind() Kind { return KindISigmet }

func (s ISigmet) ID() string {
	return generateID(KindISigmet, s.FIRID, s.SeriesID, s.Hazard, s.ValidTimeFrom, s.Coords)
}

func (s ISigmet) Interval() Interval {
	return Interval{Start: s.ValidTimeFrom, End: s.ValidTimeTo}
}

func (s ISigmet) Severity() Severity {
	switch s.Hazard {
	case ISigmetThunderstorm, ISigmetTropicalCyclone, ISigmetVolcanicAsh:
		return SeverityExtreme
	case ISigmetTurbulence, ISigmetIcing, ISigmetMountainWave:
		return SeveritySevere
	case ISigmetDustStorm, ISigmetSandStorm, ISigmetRadioactiveCloud:
		return SeverityModerate
	default:
		return SeverityUnknown
	}
}

func (s ISigmet) Dangerous() bool { return s.Severity() >= SeveritySevere }
