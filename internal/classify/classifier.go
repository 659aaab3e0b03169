package classify

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrNotTrained is returned when Predict is called before the classifier has
// been trained or loaded.
var ErrNotTrained = errors.New("classifier has no trained weights")

// Classifier is a transparent linear weighted-feature scorer: a flat map of
// feature name → weight plus a learned decision threshold. Immutable after
// training or loading, so concurrent Predict calls are safe.
type Classifier struct {
	weights   map[string]float64
	threshold float64
	extractor *FeatureExtractor
	trained   bool
}

// NewClassifier creates an untrained classifier backed by the given header
// list. Predict fails until Train or Load has been called.
func NewClassifier(headers *HeaderList) *Classifier {
	return &Classifier{
		weights:   make(map[string]float64),
		extractor: NewFeatureExtractor(headers),
	}
}

// Predict reports whether the line at lineIndex out of totalLines is a
// section header.
func (c *Classifier) Predict(line string, lineIndex, totalLines int) (bool, error) {
	if !c.trained {
		return false, ErrNotTrained
	}
	features := c.extractor.Extract(line, lineIndex, totalLines)
	return c.Score(features) > c.threshold, nil
}

// Features exposes the feature vector the classifier derives for a line.
func (c *Classifier) Features(line string, lineIndex, totalLines int) LineFeatures {
	return c.extractor.Extract(line, lineIndex, totalLines)
}

// Score sums the weights of every active feature.
func (c *Classifier) Score(features LineFeatures) float64 {
	score := 0.0
	for name, active := range features.Active() {
		if active {
			score += c.weights[name]
		}
	}
	return score
}

// Threshold returns the learned decision threshold.
func (c *Classifier) Threshold() float64 {
	return c.threshold
}

// Weights returns a copy of the weight map.
func (c *Classifier) Weights() map[string]float64 {
	out := make(map[string]float64, len(c.weights))
	for k, v := range c.weights {
		out[k] = v
	}
	return out
}

// Headers returns the reference header list backing the known-header feature.
func (c *Classifier) Headers() *HeaderList {
	return c.extractor.headers
}

// modelFile is the serialized form of a trained classifier. The reference
// header list is deliberately not part of this record; it is loaded
// separately.
type modelFile struct {
	Weights   map[string]float64 `json:"weights"`
	Threshold float64            `json:"threshold"`
}

// Save writes the trained weights and threshold to path as JSON.
func (c *Classifier) Save(path string) error {
	if !c.trained {
		return ErrNotTrained
	}

	data, err := json.MarshalIndent(modelFile{
		Weights:   c.weights,
		Threshold: c.threshold,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}

	return nil
}

// Load reads weights and threshold from path, replacing any prior state.
func (c *Classifier) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read model: %w", err)
	}

	var m modelFile
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse model: %w", err)
	}
	if len(m.Weights) == 0 {
		return fmt.Errorf("model file %s has no weights", path)
	}

	c.weights = m.Weights
	c.threshold = m.Threshold
	c.trained = true

	return nil
}

// setModel installs trained parameters. Used by the trainer.
func (c *Classifier) setModel(weights map[string]float64, threshold float64) {
	c.weights = weights
	c.threshold = threshold
	c.trained = true
}
