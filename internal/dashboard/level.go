package dashboard

// Level is the severity band of a usage gauge.
type Level int

const (
	Normal Level = iota
	Warning
	Danger
)

// String returns the lower-case level name.
func (l Level) String() string {
	switch l {
	case Warning:
		return "warning"
	case Danger:
		return "danger"
	default:
		return "normal"
	}
}

// Gauge thresholds. A value must exceed a threshold to enter its band.
const (
	CPUWarning     = 60.0
	CPUDanger      = 80.0
	StorageWarning = 80.0
	StorageDanger  = 90.0
)

func bandOf(v, warning, danger float64) Level {
	switch {
	case v > danger:
		return Danger
	case v > warning:
		return Warning
	default:
		return Normal
	}
}

// CPULevel classifies CPU usage: above 80 is danger, above 60 warning.
func CPULevel(v float64) Level {
	return bandOf(v, CPUWarning, CPUDanger)
}

// MemoryLevel classifies memory usage: above 90 is danger, above 80 warning.
func MemoryLevel(v float64) Level {
	return bandOf(v, StorageWarning, StorageDanger)
}

// DiskLevel uses the same bands as memory.
func DiskLevel(v float64) Level {
	return bandOf(v, StorageWarning, StorageDanger)
}

// Gauge is one rendered usage bar.
type Gauge struct {
	Value float64
	Width float64 // Value clamped to 0..100
	Level Level
}

// NewGauge builds a gauge using classify for the level.
func NewGauge(v float64, classify func(float64) Level) Gauge {
	w := v
	if w < 0 {
		w = 0
	}
	if w > 100 {
		w = 100
	}
	return Gauge{Value: v, Width: w, Level: classify(v)}
}
