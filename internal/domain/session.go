package domain

// Mode is the closed set of session lifecycle states.
type Mode int

const (
	// ModeFirstTime means the session is constructed but not yet sampling.
	ModeFirstTime Mode = iota
	// ModeRunning is the continuous free-running mode.
	ModeRunning
	// ModeTraining is the epoch-delimited mode.
	ModeTraining
	// ModeShuttingDown marks a terminated session.
	ModeShuttingDown
)

func (m Mode) String() string {
	switch m {
	case ModeFirstTime:
		return "first_time"
	case ModeRunning:
		return "running"
	case ModeTraining:
		return "training"
	case ModeShuttingDown:
		return "shutting_down"
	}
	return "unknown"
}

// PowerSource is one measured device class (CPU, GPU or RAM).
// CalculateConsumption returns the energy drawn since the previous call,
// in kWh. Implementations degrade to a zero delta on read failures.
type PowerSource interface {
	Name() string
	Description() string
	CalculateConsumption() (float64, error)
}
