package emission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_OverrideWins(t *testing.T) {
	f := Resolve(250, "FR", "")
	assert.Equal(t, 250.0, f.KgPerMWh)
	assert.Equal(t, "FR", f.Label)
}

func TestResolve_CountryLookup(t *testing.T) {
	f := Resolve(0, "fr", "")
	assert.Equal(t, 67.5, f.KgPerMWh)
	assert.Equal(t, "FR", f.Label)
}

func TestResolve_RegionRefinesCountry(t *testing.T) {
	f := Resolve(0, "US", "California")
	assert.Equal(t, 203.3, f.KgPerMWh)
	assert.Equal(t, "US/California", f.Label)

	// unknown region falls back to the country figure
	f = Resolve(0, "US", "Atlantis")
	assert.Equal(t, 379.3, f.KgPerMWh)
	assert.Equal(t, "US/Atlantis", f.Label)
}

func TestResolve_WorldAverageFallback(t *testing.T) {
	f := Resolve(0, "", "")
	assert.Equal(t, WorldAverage, f.KgPerMWh)
	assert.Equal(t, "World", f.Label)

	f = Resolve(0, "ZZ", "")
	assert.Equal(t, WorldAverage, f.KgPerMWh)
}

func TestCO2Kg_FactorPerMWhOverEnergyInKWh(t *testing.T) {
	f := Factor{KgPerMWh: 436.529}
	assert.InDelta(t, 0.0025*436.529/1000, f.CO2Kg(0.0025), 1e-15)
	assert.Zero(t, f.CO2Kg(0))
}
