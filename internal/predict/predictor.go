// Package predict runs a loaded fraud classifier against a built feature
// vector and returns a binary label with the positive-class probability.
package predict

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"fraudscore/internal/features"
	"fraudscore/internal/model"
)

// ErrPredict marks inference failures, most commonly a schema mismatch
// between the built vector and the model's training-time columns.
var ErrPredict = errors.New("prediction")

// MetricsInterface defines the metrics methods needed by the predictor.
type MetricsInterface interface {
	PredictionsInc()
	FailuresInc()
	LatencyObserve(float64)
	ScoreObserve(float64)
	ModelAgeSet(float64)
}

// Result is a binary prediction: label 0 or 1 plus the probability of the
// positive (fraud) class.
type Result struct {
	Label       int
	Probability float64
}

type Predictor struct {
	model    *model.Classifier
	metrics  MetricsInterface
	mu       sync.Mutex
	lastUsed time.Time
}

func New(m *model.Classifier) (*Predictor, error) {
	return NewWithMetrics(m, nil)
}

func NewWithMetrics(m *model.Classifier, metrics MetricsInterface) (*Predictor, error) {
	if m == nil || len(m.Weights) == 0 {
		return nil, fmt.Errorf("%w: classifier has no weights", ErrPredict)
	}
	return &Predictor{model: m, metrics: metrics}, nil
}

// Predict scores a feature vector. The vector's columns must match the
// model's training-time columns exactly; a vector missing columns the
// model was trained on fails with an error naming them rather than being
// silently reconciled.
func (p *Predictor) Predict(v *features.Vector) (Result, error) {
	if p == nil {
		return Result{}, fmt.Errorf("%w: predictor is nil", ErrPredict)
	}
	if v == nil {
		return Result{}, fmt.Errorf("%w: feature vector is nil", ErrPredict)
	}

	start := time.Now()
	p.mu.Lock()
	defer func() {
		p.lastUsed = time.Now()
		p.mu.Unlock()
		if p.metrics != nil {
			p.metrics.LatencyObserve(time.Since(start).Seconds())
		}
	}()

	if err := p.checkSchema(v); err != nil {
		if p.metrics != nil {
			p.metrics.FailuresInc()
		}
		return Result{}, err
	}

	for i, val := range v.Values() {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			if p.metrics != nil {
				p.metrics.FailuresInc()
			}
			return Result{}, fmt.Errorf("%w: feature %s has invalid value %f",
				ErrPredict, v.Columns()[i], val)
		}
	}

	score := p.model.Intercept
	for i, col := range v.Columns() {
		score += p.model.Weights[col] * v.Values()[i]
	}

	prob := sigmoid(score)
	label := 0
	if prob >= 0.5 {
		label = 1
	}

	if p.metrics != nil {
		p.metrics.PredictionsInc()
		p.metrics.ScoreObserve(prob)
	}

	log.Debug().Float64("score", score).Float64("probability", prob).
		Int("label", label).Msg("prediction complete")

	return Result{Label: label, Probability: prob}, nil
}

// checkSchema verifies the vector carries every training-time column, in
// training order when the model recorded one.
func (p *Predictor) checkSchema(v *features.Vector) error {
	trained := p.trainedColumns()

	var missing []string
	for _, col := range trained {
		if !v.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: columns are missing: %v", ErrPredict, missing)
	}

	if v.Len() != len(trained) {
		return fmt.Errorf("%w: expected %d columns, got %d",
			ErrPredict, len(trained), v.Len())
	}
	if len(p.model.FeatureNames) > 0 {
		for i, col := range p.model.FeatureNames {
			if v.Columns()[i] != col {
				return fmt.Errorf("%w: column %d is %q, model expects %q",
					ErrPredict, i, v.Columns()[i], col)
			}
		}
	}
	return nil
}

// trainedColumns returns the model's recorded feature names, falling back
// to its sorted weight keys for artifacts that never recorded an order.
func (p *Predictor) trainedColumns() []string {
	if len(p.model.FeatureNames) > 0 {
		return p.model.FeatureNames
	}
	cols := make([]string, 0, len(p.model.Weights))
	for col := range p.model.Weights {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
