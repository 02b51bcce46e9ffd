package domain

import (
	"strconv"
	"time"
)

// NotApplicable is the sentinel for absent values and repaired columns.
const NotApplicable = "N/A"

// TimeLayout is the ledger's timestamp format, local time.
const TimeLayout = "2006-01-02 15:04:05"

// LedgerColumns is the canonical column order of the ledger file.
// The on-disk header must match it exactly.
var LedgerColumns = []string{
	"id",
	"project_name",
	"experiment_description",
	"epoch",
	"start_time",
	"duration(s)",
	"power_consumption(kWh)",
	"CO2_emissions(kg)",
	"CPU_name",
	"GPU_name",
	"OS",
	"region/country",
	"cost",
}

// Record is one durable ledger row, keyed by session id.
type Record struct {
	ID          string
	ProjectName string
	Description string
	EpochLabel  string
	StartTime   time.Time
	DurationSec float64
	EnergyKWh   float64
	CO2Kg       float64
	CPUName     string
	GPUName     string
	OS          string
	Region      string
	Cost        float64
}

// Row renders the record in canonical column order.
func (r Record) Row() []string {
	return []string{
		r.ID,
		r.ProjectName,
		r.Description,
		r.EpochLabel,
		r.StartTime.Format(TimeLayout),
		formatFloat(r.DurationSec),
		formatFloat(r.EnergyKWh),
		formatFloat(r.CO2Kg),
		r.CPUName,
		r.GPUName,
		r.OS,
		r.Region,
		formatFloat(r.Cost),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
