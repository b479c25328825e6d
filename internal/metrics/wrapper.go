package metrics

// Wrapper exposes the subset of metrics the predictor needs without
// importing prometheus types there.
type Wrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *Wrapper {
	return &Wrapper{m: m}
}

func (w *Wrapper) PredictionsInc() {
	w.m.PredictionsTotal.Inc()
}

func (w *Wrapper) FailuresInc() {
	w.m.PredictionFailures.Inc()
}

func (w *Wrapper) LatencyObserve(v float64) {
	w.m.PredictionLatency.Observe(v)
}

func (w *Wrapper) ScoreObserve(v float64) {
	w.m.PredictionScores.Observe(v)
}

func (w *Wrapper) ModelAgeSet(v float64) {
	w.m.ModelAge.Set(v)
}
