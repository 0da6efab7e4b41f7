// Package domain models the data the aloft service moves between its feeds
// and its consumers.
//
// # Reports
//
// A [WindsAloftReport] is a time series of [WindsAloftHour] values for one
// latitude/longitude. Each hour carries a vertical profile of
// [WindsAloftAltitude] levels, ordered from the ground up:
//
//	altitude_m          meters above mean sea level
//	pressure_hpa        hectopascals
//	wind_speed_kph      kilometers per hour
//	wind_direction_deg  degrees the wind blows from, in [0, 360)
//	temperature_c       degrees Celsius
//	dewpoint_c          degrees Celsius, never above temperature_c
//
// Reports come from one of two sources. Gridded reports are built from a
// numerical model response and share a single altitude ladder across every
// hour. Sounding reports are built from radiosonde-style records and keep
// each record's own levels; a stale sounding report may be extended with
// gridded hours, in which case Extended is set.
//
// # Feed envelopes
//
// Raw source messages carry a [FeedKind] of gridded, sounding or alerts.
// The pipeline turns gridded and sounding envelopes into reports and alert
// envelopes into a correlated alert list.
//
// # Time
//
// All timestamps are UTC. The package clock ([Now], [SetClock]) lets tests
// freeze time for staleness and alert-window decisions.
package domain
