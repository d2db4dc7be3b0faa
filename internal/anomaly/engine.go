// Package anomaly trains per-service isolation-forest models over rolling
// metric history and scores the newest sample of each cycle.
package anomaly

import (
	"log/slog"
	"sync"

	"github.com/autohealx/healmon/internal/history"
	"github.com/autohealx/healmon/internal/models"
)

// DefaultMinTrainingSize is the smallest history window the engine will fit a
// model on. Below it the engine reports InsufficientData rather than guessing.
const DefaultMinTrainingSize = 10

// Affine confidence normalization applied to the path-length score. The
// constants are empirical tunables that spread typical scores across the unit
// interval; they are not a calibrated probability.
const (
	confidenceShift = 0.5
	confidenceScale = 2.0
)

// Status tags the outcome of one observe-and-score pass.
type Status string

const (
	// StatusScored means a model was fitted and produced a decision.
	StatusScored Status = "scored"
	// StatusInsufficientData means the history window is still warming up.
	StatusInsufficientData Status = "insufficient_data"
	// StatusFitError means scaling or fitting failed on this window.
	StatusFitError Status = "fit_error"
)

// Result is the outcome of scoring one sample. IsAnomaly and Confidence are
// meaningful only when Status is StatusScored; the other statuses always carry
// (false, 0), the designed cold-start and failure behavior.
type Result struct {
	Status     Status
	IsAnomaly  bool
	Confidence float64
	RawScore   float64
}

// Config tunes the engine's training discipline.
type Config struct {
	MinTrainingSize int
	Contamination   float64
	Seed            int64
}

// Engine owns the per-service history buffers and model state. No other
// component writes either. Models are refit from scratch on every cycle that
// has enough history, so detection adapts to recent regime shifts but has no
// memory beyond the buffered window.
type Engine struct {
	logger *slog.Logger
	store  *history.Store
	cfg    Config

	mu     sync.Mutex
	states map[string]*serviceState
}

// serviceState holds the most recently fitted scaler and model for a service.
type serviceState struct {
	scaler standardScaler
	forest *isolationForest
}

// NewEngine constructs an engine over the given history store.
func NewEngine(logger *slog.Logger, store *history.Store, cfg Config) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if store == nil {
		store = history.NewStore(history.DefaultCapacity)
	}
	if cfg.MinTrainingSize <= 0 {
		cfg.MinTrainingSize = DefaultMinTrainingSize
	}
	if cfg.Contamination <= 0 || cfg.Contamination >= 1 {
		cfg.Contamination = DefaultContamination
	}
	if cfg.Seed == 0 {
		cfg.Seed = DefaultSeed
	}
	return &Engine{
		logger: logger,
		store:  store,
		cfg:    cfg,
		states: make(map[string]*serviceState),
	}
}

// ObserveAndScore appends the sample to the service's history, refits the
// service's scaler and model on the full window, and scores the sample. Fit
// failures never propagate; they degrade to a no-anomaly result.
func (e *Engine) ObserveAndScore(service string, sample models.MetricsSample) Result {
	e.store.Append(service, sample)

	window := e.store.Snapshot(service)
	if len(window) < e.cfg.MinTrainingSize {
		return Result{Status: StatusInsufficientData}
	}

	matrix := make([][]float64, len(window))
	for i, s := range window {
		matrix[i] = s.Features()
	}

	state := e.state(service)
	if err := state.scaler.fit(matrix); err != nil {
		e.logger.Warn("feature scaling failed",
			slog.String("service", service), slog.Any("error", err))
		return Result{Status: StatusFitError}
	}
	scaled := state.scaler.transform(matrix)

	state.forest = newIsolationForest(e.cfg.Contamination, e.cfg.Seed)
	if err := state.forest.fit(scaled); err != nil {
		e.logger.Warn("model fit failed",
			slog.String("service", service), slog.Any("error", err))
		return Result{Status: StatusFitError}
	}

	current := scaled[len(scaled)-1]
	raw := state.forest.score(current)

	// The forest scores in (0,1], higher meaning more anomalous. Negate to
	// the convention where normal points sit near -0.5 before applying the
	// affine confidence map.
	confidence := clamp((-raw+confidenceShift)*confidenceScale, 0, 1)

	return Result{
		Status:     StatusScored,
		IsAnomaly:  state.forest.anomalous(current),
		Confidence: confidence,
		RawScore:   raw,
	}
}

// History exposes the engine's history store for inspection.
func (e *Engine) History() *history.Store {
	return e.store
}

func (e *Engine) state(service string) *serviceState {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.states[service]
	if !ok {
		st = &serviceState{}
		e.states[service] = st
	}
	return st
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
