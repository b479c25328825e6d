package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"fraudscore/internal/cfg"
	"fraudscore/internal/features"
	"fraudscore/internal/metrics"
	"fraudscore/internal/model"
	"fraudscore/internal/predict"
	"fraudscore/internal/storage"
)

// Example transaction scored by this run. The categorical mapping is the
// hand-authored link between raw attributes and their one-hot prefixes.
var exampleTransaction = features.Record{
	"Transaction_Amount": 2450.75,
	"Transaction_Type":   "Online",
	"Account_Age_Days":   120,
	"Transaction_Hour":   23,
	"Location":           "California",
	"Device_Type":        "Mobile",
}

var categoricalColumns = features.CategoricalMapping{
	"Transaction_Type": "Transaction_Type",
	"Location":         "Location",
	"Device_Type":      "Device_Type",
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := run(); err != nil {
		log.Error().Err(err).Msg("fraud scoring failed")
		os.Exit(1)
	}
}

func run() error {
	c, err := cfg.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	if c.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	m := metrics.New()
	mw := metrics.NewWrapper(m)

	store := initializeStorage(c)
	if store != nil {
		defer store.Close()
	}

	art, err := loadArtifact(c, mw)
	if err != nil {
		m.LoadFailures.Inc()
		return err
	}
	fmt.Println("Model loaded successfully.")

	expected, err := resolveExpectedFeatures(art)
	if err != nil {
		return err
	}
	fmt.Printf("Model expects %d features: %v\n", len(expected), expected)

	vec, err := features.Build(exampleTransaction, expected, categoricalColumns)
	if err != nil {
		return fmt.Errorf("feature vector build failed: %w", err)
	}

	pred, err := predict.NewWithMetrics(art.Model, mw)
	if err != nil {
		return err
	}

	res, err := pred.Predict(vec)
	if err != nil {
		return err
	}

	fmt.Printf("Prediction: %d\n", res.Label)
	fmt.Printf("Fraud probability: %.4f\n", res.Probability)
	if res.Probability >= c.AlertThreshold {
		fmt.Println("ALERT: transaction classified as fraudulent")
	} else {
		fmt.Println("Transaction classified as legitimate")
	}

	if store != nil {
		sc := storage.Score{
			Ts:          time.Now(),
			Record:      exampleTransaction,
			Label:       res.Label,
			Probability: res.Probability,
		}
		if err := store.StoreScore(sc); err != nil {
			log.Warn().Err(err).Msg("failed to audit scored transaction")
		}
	}

	log.Info().Fields(map[string]interface{}{"metrics": metrics.Summary(prometheus.DefaultGatherer)}).
		Msg("run complete")

	return nil
}

// initializeStorage opens the audit store if DATA_PATH is configured.
func initializeStorage(c cfg.Settings) *storage.Store {
	if c.DataPath != "" {
		store, err := storage.New(c.DataPath)
		if err != nil {
			log.Warn().Err(err).Msg("storage initialization failed, continuing without audit trail")
			return nil
		}
		return store
	}
	return nil
}

// loadArtifact fetches the artifact first when the configured location is
// a URL, then deserializes it and records the model file age.
func loadArtifact(c cfg.Settings, mw *metrics.Wrapper) (*model.Artifact, error) {
	path := c.ModelPath
	if model.IsRemote(path) {
		cacheDir := c.DataPath
		if cacheDir == "" {
			cacheDir = os.TempDir()
		}
		local, err := model.Fetch(context.Background(), path, cacheDir, c.FetchTimeout)
		if err != nil {
			return nil, err
		}
		path = local
	}

	art, err := model.Load(path)
	if err != nil {
		return nil, err
	}

	if info, err := os.Stat(path); err == nil {
		age := time.Since(info.ModTime()).Seconds()
		mw.ModelAgeSet(age)
		log.Info().Str("model_path", path).Float64("age_seconds", age).Msg("model artifact loaded")
	}

	return art, nil
}

// resolveExpectedFeatures prefers the artifact metadata, then the model's
// own recorded feature names. Exported pipelines may expose neither, which
// leaves nothing to build a vector against.
func resolveExpectedFeatures(art *model.Artifact) ([]string, error) {
	if len(art.ExpectedFeatures) > 0 {
		return art.ExpectedFeatures, nil
	}

	if len(art.Model.FeatureNames) > 0 {
		log.Info().Msg("artifact metadata has no feature list, using the model's recorded feature names")
		return art.Model.FeatureNames, nil
	}

	log.Info().Msg("pipeline artifacts may not expose feature names directly")
	return nil, fmt.Errorf("%w: artifact does not expose an expected feature list", model.ErrLoad)
}
