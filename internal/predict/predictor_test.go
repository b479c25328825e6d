package predict

import (
	"errors"
	"math"
	"strings"
	"testing"

	"fraudscore/internal/features"
	"fraudscore/internal/model"
)

func encodedClassifier() *model.Classifier {
	return &model.Classifier{
		Weights: map[string]float64{
			"Transaction_Amount":      0.001,
			"Transaction_Type_Online": 2.0,
		},
		Intercept:    -1.0,
		FeatureNames: []string{"Transaction_Amount", "Transaction_Type_Online"},
	}
}

func buildVector(t *testing.T, rec features.Record, expected []string) *features.Vector {
	t.Helper()
	v, err := features.Build(rec, expected, features.CategoricalMapping{"Transaction_Type": "Transaction_Type"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return v
}

func TestPredictor_RejectsClassifierWithoutWeights(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("Expected error for nil classifier")
	}
	if _, err := New(&model.Classifier{}); err == nil {
		t.Error("Expected error for classifier without weights")
	}
}

func TestPredictor_NilSafety(t *testing.T) {
	var p *Predictor

	_, err := p.Predict(nil)
	if err == nil {
		t.Error("Expected error for nil predictor")
	}

	p, _ = New(encodedClassifier())
	if _, err := p.Predict(nil); err == nil {
		t.Error("Expected error for nil vector")
	}
}

func TestPredictor_ProbabilityAndLabel(t *testing.T) {
	p, err := New(encodedClassifier())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	expected := []string{"Transaction_Amount", "Transaction_Type_Online"}

	// score = -1.0 + 0.001*2000 + 2.0*1 = 3.0 -> fraud
	v := buildVector(t, features.Record{
		"Transaction_Amount": 2000.0,
		"Transaction_Type":   "Online",
	}, expected)

	res, err := p.Predict(v)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if res.Label != 1 {
		t.Errorf("Expected label 1, got %d", res.Label)
	}
	want := 1.0 / (1.0 + math.Exp(-3.0))
	if math.Abs(res.Probability-want) > 1e-9 {
		t.Errorf("Expected probability %f, got %f", want, res.Probability)
	}

	// score = -1.0 + 0.001*100 = -0.9 -> legitimate
	v = buildVector(t, features.Record{
		"Transaction_Amount": 100.0,
		"Transaction_Type":   "ATM",
	}, expected)

	res, err = p.Predict(v)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if res.Label != 0 {
		t.Errorf("Expected label 0, got %d", res.Label)
	}
	if res.Probability >= 0.5 {
		t.Errorf("Expected probability below 0.5, got %f", res.Probability)
	}
}

// Reproduces the mismatch seen when the metadata feature list was generated
// from already-encoded training columns but the model itself recorded the
// raw categorical keys: prediction must fail naming the raw keys, not
// silently reconcile the schemas.
func TestPredictor_MissingColumnsNamedInError(t *testing.T) {
	cls := &model.Classifier{
		Weights: map[string]float64{
			"Transaction_Amount": 0.001,
			"Transaction_Type":   1.0,
			"Location":           0.5,
		},
		Intercept:    0,
		FeatureNames: []string{"Transaction_Amount", "Transaction_Type", "Location"},
	}
	p, err := New(cls)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Vector built against one-hot encoded expected features; the raw keys
	// the model wants are absent verbatim.
	v := buildVector(t, features.Record{
		"Transaction_Amount": 50.0,
		"Transaction_Type":   "Online",
	}, []string{"Transaction_Amount", "Transaction_Type_Online", "Location_California"})

	_, err = p.Predict(v)
	if err == nil {
		t.Fatal("Expected schema mismatch error")
	}
	if !errors.Is(err, ErrPredict) {
		t.Errorf("Expected ErrPredict, got %v", err)
	}
	if !strings.Contains(err.Error(), "columns are missing") {
		t.Errorf("Expected 'columns are missing' in error, got: %v", err)
	}
	for _, raw := range []string{"Transaction_Type", "Location"} {
		if !strings.Contains(err.Error(), raw) {
			t.Errorf("Expected missing column %q named in error: %v", raw, err)
		}
	}
}

func TestPredictor_ColumnOrderMismatch(t *testing.T) {
	p, _ := New(encodedClassifier())

	// Same columns, wrong order.
	v := buildVector(t, features.Record{
		"Transaction_Amount": 10.0,
	}, []string{"Transaction_Type_Online", "Transaction_Amount"})

	_, err := p.Predict(v)
	if err == nil {
		t.Fatal("Expected error for column order mismatch")
	}
	if !errors.Is(err, ErrPredict) {
		t.Errorf("Expected ErrPredict, got %v", err)
	}
}

func TestPredictor_RejectsInvalidValues(t *testing.T) {
	p, _ := New(encodedClassifier())

	v := buildVector(t, features.Record{
		"Transaction_Amount": math.NaN(),
	}, []string{"Transaction_Amount", "Transaction_Type_Online"})

	if _, err := p.Predict(v); err == nil {
		t.Error("Expected error for NaN feature")
	}
}

func TestPredictor_Deterministic(t *testing.T) {
	p, _ := New(encodedClassifier())
	v := buildVector(t, features.Record{
		"Transaction_Amount": 500.0,
		"Transaction_Type":   "Online",
	}, []string{"Transaction_Amount", "Transaction_Type_Online"})

	r1, err := p.Predict(v)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	r2, err := p.Predict(v)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if r1 != r2 {
		t.Errorf("Expected identical results, got %+v and %+v", r1, r2)
	}
}

func TestPredictor_MetricsTracking(t *testing.T) {
	metrics := &MockMetrics{}
	p, err := NewWithMetrics(encodedClassifier(), metrics)
	if err != nil {
		t.Fatalf("NewWithMetrics failed: %v", err)
	}

	v := buildVector(t, features.Record{
		"Transaction_Amount": 500.0,
	}, []string{"Transaction_Amount", "Transaction_Type_Online"})

	for i := 0; i < 3; i++ {
		if _, err := p.Predict(v); err != nil {
			t.Fatalf("Predict failed: %v", err)
		}
	}

	if metrics.predictions != 3 {
		t.Errorf("Expected 3 predictions tracked, got %d", metrics.predictions)
	}
	if len(metrics.scores) != 3 {
		t.Errorf("Expected 3 scores tracked, got %d", len(metrics.scores))
	}
	if metrics.latencySum == 0 {
		t.Error("Expected some latency to be tracked")
	}

	// A schema failure counts as a failure, not a prediction
	bad := buildVector(t, features.Record{}, []string{"Transaction_Amount"})
	if _, err := p.Predict(bad); err == nil {
		t.Fatal("Expected schema mismatch error")
	}
	if metrics.failures != 1 {
		t.Errorf("Expected 1 failure tracked, got %d", metrics.failures)
	}
	if metrics.predictions != 3 {
		t.Errorf("Expected prediction count unchanged, got %d", metrics.predictions)
	}
}

func TestPredictor_SortedWeightKeysWhenNoRecordedOrder(t *testing.T) {
	cls := &model.Classifier{
		Weights:   map[string]float64{"b": 1.0, "a": 2.0},
		Intercept: 0,
	}
	p, _ := New(cls)

	v := buildVector(t, features.Record{"a": 1.0, "b": 1.0}, []string{"a", "b"})

	res, err := p.Predict(v)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	want := 1.0 / (1.0 + math.Exp(-3.0))
	if math.Abs(res.Probability-want) > 1e-9 {
		t.Errorf("Expected probability %f, got %f", want, res.Probability)
	}
}
