// Package model loads and saves trained fraud classifier artifacts.
// An artifact is a JSON file holding either a metadata container with a
// model slot, or a bare classifier object.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

// ErrLoad marks artifact load failures: missing, corrupt, or unreadable
// files, or files with no recognizable model in them.
var ErrLoad = errors.New("model load")

// Classifier is a trained logistic-regression scorer. Weights are keyed by
// training column name; FeatureNames, when recorded at export time, holds
// those columns in training order.
type Classifier struct {
	Weights      map[string]float64 `json:"weights"`
	Intercept    float64            `json:"intercept"`
	FeatureNames []string           `json:"feature_names,omitempty"`
}

// Artifact bundles a classifier with optional training metadata. Metadata
// lists default to empty when the artifact omits them.
type Artifact struct {
	Model               *Classifier `json:"model"`
	ExpectedFeatures    []string    `json:"expected_features,omitempty"`
	CategoricalFeatures []string    `json:"categorical_features,omitempty"`
	TrainingColumns     []string    `json:"training_columns,omitempty"`
}

// Load reads an artifact file. A container with a model slot is used as-is;
// anything else is retried as a bare classifier with empty metadata.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrLoad, path, err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err == nil && a.Model != nil {
		normalize(&a)
		log.Debug().Str("path", path).
			Int("expected_features", len(a.ExpectedFeatures)).
			Int("training_columns", len(a.TrainingColumns)).
			Msg("artifact loaded with metadata")
		return &a, nil
	}

	var c Classifier
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrLoad, path, err)
	}
	if len(c.Weights) == 0 {
		return nil, fmt.Errorf("%w: %s holds no recognizable model", ErrLoad, path)
	}

	log.Debug().Str("path", path).Msg("artifact loaded as bare model, no metadata")
	a = Artifact{Model: &c}
	normalize(&a)
	return &a, nil
}

// Save writes an artifact as indented JSON, readable back by Load.
func Save(path string, a *Artifact) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

func normalize(a *Artifact) {
	if a.ExpectedFeatures == nil {
		a.ExpectedFeatures = []string{}
	}
	if a.CategoricalFeatures == nil {
		a.CategoricalFeatures = []string{}
	}
	if a.TrainingColumns == nil {
		a.TrainingColumns = []string{}
	}
}
