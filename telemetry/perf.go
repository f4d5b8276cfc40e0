package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one generation run.
const (
	PhaseSimulate = "simulate" // blade simulation, rasterization and supersample downscale
	PhaseCompose  = "compose"
	PhaseRepack   = "repack"
	PhaseStamp    = "stamp"
	PhaseFill     = "fill"
	PhaseEncode   = "encode"
)

var phaseOrder = []string{PhaseSimulate, PhaseCompose, PhaseRepack, PhaseStamp, PhaseFill, PhaseEncode}

// PerfCollector accumulates per-phase timings over every run of one
// invocation, plus the render time of each individual piece.
type PerfCollector struct {
	runs   int
	total  time.Duration
	phases map[string]time.Duration
	pieces []time.Duration

	runStart   time.Time
	phaseStart time.Time
	lastPhase  string
}

// NewPerfCollector creates a new performance collector.
func NewPerfCollector() *PerfCollector {
	return &PerfCollector{phases: make(map[string]time.Duration)}
}

// StartRun begins timing a new run.
func (p *PerfCollector) StartRun() {
	p.runStart = time.Now()
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase, ending the previous one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.phases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndRun closes the current phase and adds the run to the totals.
func (p *PerfCollector) EndRun() {
	now := time.Now()
	if p.lastPhase != "" {
		p.phases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.total += now.Sub(p.runStart)
	p.runs++
	p.lastPhase = ""
}

// RecordPieces adds per-piece render durations.
func (p *PerfCollector) RecordPieces(d ...time.Duration) {
	p.pieces = append(p.pieces, d...)
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	Runs  int
	Total time.Duration

	// Phase breakdown (summed durations)
	PhaseTotal map[string]time.Duration

	// Phase percentages of total run time
	PhasePct map[string]float64

	// Per-piece render times
	Pieces   int
	AvgPiece time.Duration
	MinPiece time.Duration
	MaxPiece time.Duration
}

// Stats returns the totals collected so far.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		Runs:       p.runs,
		Total:      p.total,
		PhaseTotal: make(map[string]time.Duration, len(p.phases)),
		PhasePct:   make(map[string]float64, len(p.phases)),
		Pieces:     len(p.pieces),
	}
	for phase, d := range p.phases {
		s.PhaseTotal[phase] = d
		if p.total > 0 {
			s.PhasePct[phase] = float64(d) / float64(p.total) * 100
		}
	}

	var sum time.Duration
	for i, d := range p.pieces {
		sum += d
		if i == 0 || d < s.MinPiece {
			s.MinPiece = d
		}
		if d > s.MaxPiece {
			s.MaxPiece = d
		}
	}
	if len(p.pieces) > 0 {
		s.AvgPiece = sum / time.Duration(len(p.pieces))
	}
	return s
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"runs", s.Runs,
		"total_ms", s.Total.Milliseconds(),
		"pieces", s.Pieces,
		"avg_piece_ms", s.AvgPiece.Milliseconds(),
		"min_piece_ms", s.MinPiece.Milliseconds(),
		"max_piece_ms", s.MaxPiece.Milliseconds(),
	}
	for _, phase := range phaseOrder {
		if d, ok := s.PhaseTotal[phase]; ok {
			attrs = append(attrs,
				phase+"_ms", d.Milliseconds(),
				phase+"_pct", int(s.PhasePct[phase]*10)/10.0,
			)
		}
	}
	slog.Info("perf", attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Mode        string  `csv:"mode"`
	Runs        int     `csv:"runs"`
	TotalMS     int64   `csv:"total_ms"`
	Pieces      int     `csv:"pieces"`
	AvgPieceMS  float64 `csv:"avg_piece_ms"`
	MaxPieceMS  float64 `csv:"max_piece_ms"`
	SimulatePct float64 `csv:"simulate_pct"`
	ComposePct  float64 `csv:"compose_pct"`
	RepackPct   float64 `csv:"repack_pct"`
	StampPct    float64 `csv:"stamp_pct"`
	FillPct     float64 `csv:"fill_pct"`
	EncodePct   float64 `csv:"encode_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(mode string) PerfStatsCSV {
	return PerfStatsCSV{
		Mode:        mode,
		Runs:        s.Runs,
		TotalMS:     s.Total.Milliseconds(),
		Pieces:      s.Pieces,
		AvgPieceMS:  float64(s.AvgPiece.Microseconds()) / 1000,
		MaxPieceMS:  float64(s.MaxPiece.Microseconds()) / 1000,
		SimulatePct: s.PhasePct[PhaseSimulate],
		ComposePct:  s.PhasePct[PhaseCompose],
		RepackPct:   s.PhasePct[PhaseRepack],
		StampPct:    s.PhasePct[PhaseStamp],
		FillPct:     s.PhasePct[PhaseFill],
		EncodePct:   s.PhasePct[PhaseEncode],
	}
}
