// Package emission resolves the carbon intensity of consumed electricity.
package emission

import "strings"

// WorldAverage is the fallback carbon intensity in kg CO2 per MWh, used
// when neither an explicit factor nor a known country code is supplied.
const WorldAverage = 436.529

// Factor is a resolved emission factor plus the region/country label
// recorded in the ledger. It is immutable for the session's lifetime.
type Factor struct {
	KgPerMWh float64
	Label    string
}

// CO2Kg converts a cumulative energy figure (kWh) to emitted CO2 (kg).
func (f Factor) CO2Kg(energyKWh float64) float64 {
	return energyKWh * f.KgPerMWh / 1000
}

// Carbon intensity per country, kg CO2 per MWh (ISO 3166-1 alpha-2 keys).
var byCountry = map[string]float64{
	"AU": 656.1,
	"BR": 97.8,
	"CA": 120.5,
	"CH": 45.9,
	"CN": 555.4,
	"DE": 348.9,
	"ES": 171.1,
	"FI": 131.7,
	"FR": 67.5,
	"GB": 228.8,
	"IN": 725.7,
	"IT": 323.8,
	"JP": 478.6,
	"KR": 436.0,
	"KZ": 637.4,
	"NL": 374.8,
	"NO": 28.7,
	"PL": 657.2,
	"RU": 325.5,
	"SE": 43.1,
	"TR": 440.2,
	"UA": 258.1,
	"US": 379.3,
	"ZA": 869.9,
}

// Regional refinements, keyed "CC/Region".
var byRegion = map[string]float64{
	"CA/Quebec":     1.5,
	"US/California": 203.3,
	"US/Washington": 87.5,
	"US/Wyoming":    849.6,
}

// Resolve picks the emission factor for a session. Precedence: explicit
// override (> 0), then (country, region), then country, then the world
// average. The label mirrors what was actually matched.
func Resolve(override float64, countryCode, region string) Factor {
	country := strings.ToUpper(strings.TrimSpace(countryCode))
	region = strings.TrimSpace(region)

	label := country
	if region != "" && country != "" {
		label = country + "/" + region
	}
	if label == "" {
		label = "World"
	}

	if override > 0 {
		return Factor{KgPerMWh: override, Label: label}
	}

	if region != "" && country != "" {
		if v, ok := byRegion[country+"/"+region]; ok {
			return Factor{KgPerMWh: v, Label: label}
		}
	}
	if v, ok := byCountry[country]; ok {
		return Factor{KgPerMWh: v, Label: label}
	}

	return Factor{KgPerMWh: WorldAverage, Label: label}
}
