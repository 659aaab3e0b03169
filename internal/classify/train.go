package classify

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"
)

const (
	// Non-headers are undersampled to at most this multiple of the header
	// class before the train/validation split.
	balanceRatio = 3

	// Fraction of the balanced set used for training; the rest validates the
	// threshold search.
	trainFraction = 0.8

	// Symmetric grid searched for the decision threshold.
	thresholdMin  = -3.0
	thresholdMax  = 3.0
	thresholdStep = 0.1
)

// Example is one labeled training line, pre-annotated with its features.
type Example struct {
	Features LineFeatures
	Header   bool
}

// TrainStats summarizes a training run.
type TrainStats struct {
	HeaderExamples    int
	NonHeaderExamples int
	Threshold         float64
	ValidationF1      float64
}

// Train fits weights and a decision threshold from labeled examples and
// installs them on the classifier. Weights are the closed-form prevalence
// difference P(feature|header) − P(feature|¬header) over the training fold;
// the threshold is grid-searched on the validation fold for maximum F1.
// The seed makes balancing and splitting reproducible.
func (c *Classifier) Train(examples []Example, seed int64) (*TrainStats, error) {
	var headers, nonHeaders []Example
	for _, ex := range examples {
		if ex.Header {
			headers = append(headers, ex)
		} else {
			nonHeaders = append(nonHeaders, ex)
		}
	}

	if len(headers) == 0 {
		return nil, fmt.Errorf("training set has no header examples")
	}
	if len(nonHeaders) == 0 {
		return nil, fmt.Errorf("training set has no non-header examples")
	}

	rng := rand.New(rand.NewSource(seed))

	// Undersample the majority class.
	maxNonHeaders := len(headers) * balanceRatio
	if len(nonHeaders) > maxNonHeaders {
		rng.Shuffle(len(nonHeaders), func(i, j int) {
			nonHeaders[i], nonHeaders[j] = nonHeaders[j], nonHeaders[i]
		})
		nonHeaders = nonHeaders[:maxNonHeaders]
	}

	// Stratified split: each class contributes trainFraction to the training
	// fold so the validation fold keeps the balanced class mix.
	trainHeaders, valHeaders := splitClass(headers, rng)
	trainNon, valNon := splitClass(nonHeaders, rng)

	trainFold := append(append([]Example{}, trainHeaders...), trainNon...)
	valFold := append(append([]Example{}, valHeaders...), valNon...)

	weights := prevalenceWeights(trainFold)

	scored := c.withWeights(weights)
	threshold, f1 := searchThreshold(scored, valFold)

	c.setModel(weights, threshold)

	return &TrainStats{
		HeaderExamples:    len(headers),
		NonHeaderExamples: len(nonHeaders),
		Threshold:         threshold,
		ValidationF1:      f1,
	}, nil
}

// splitClass shuffles one class and splits it trainFraction / remainder,
// keeping at least one example on each side when possible.
func splitClass(class []Example, rng *rand.Rand) (train, val []Example) {
	shuffled := append([]Example{}, class...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	cut := int(float64(len(shuffled)) * trainFraction)
	if cut == 0 && len(shuffled) > 0 {
		cut = 1
	}
	if cut == len(shuffled) && len(shuffled) > 1 {
		cut = len(shuffled) - 1
	}

	return shuffled[:cut], shuffled[cut:]
}

// prevalenceWeights computes, for each feature, how much more often it fires
// among headers than among non-headers.
func prevalenceWeights(fold []Example) map[string]float64 {
	headerCount := 0
	nonHeaderCount := 0
	headerFires := make(map[string]int)
	nonHeaderFires := make(map[string]int)

	for _, ex := range fold {
		active := ex.Features.Active()
		if ex.Header {
			headerCount++
			for name, on := range active {
				if on {
					headerFires[name]++
				}
			}
		} else {
			nonHeaderCount++
			for name, on := range active {
				if on {
					nonHeaderFires[name]++
				}
			}
		}
	}

	weights := make(map[string]float64, len(FeatureNames))
	for _, name := range FeatureNames {
		pHeader := 0.0
		if headerCount > 0 {
			pHeader = float64(headerFires[name]) / float64(headerCount)
		}
		pNonHeader := 0.0
		if nonHeaderCount > 0 {
			pNonHeader = float64(nonHeaderFires[name]) / float64(nonHeaderCount)
		}
		weights[name] = pHeader - pNonHeader
	}

	return weights
}

// withWeights returns a scoring-only view of the classifier with candidate
// weights installed, leaving the receiver untouched until training commits.
func (c *Classifier) withWeights(weights map[string]float64) *Classifier {
	return &Classifier{
		weights:   weights,
		extractor: c.extractor,
		trained:   true,
	}
}

// searchThreshold grid-searches the decision threshold maximizing F1 on the
// validation fold. Ties keep the first (lowest) threshold, and the grid
// always contains 0, so the chosen cutoff is never strictly worse than 0.
func searchThreshold(scored *Classifier, valFold []Example) (float64, float64) {
	span := float64(thresholdMax - thresholdMin)
	steps := int(span/thresholdStep + 0.5)

	bestThreshold := 0.0
	bestF1 := -1.0

	for i := 0; i <= steps; i++ {
		t := thresholdMin + float64(i)*thresholdStep

		tp, fp, fn := 0, 0, 0
		for _, ex := range valFold {
			predicted := scored.Score(ex.Features) > t
			switch {
			case predicted && ex.Header:
				tp++
			case predicted && !ex.Header:
				fp++
			case !predicted && ex.Header:
				fn++
			}
		}

		f1 := f1Score(tp, fp, fn)
		if f1 > bestF1 {
			bestF1 = f1
			bestThreshold = t
		}
	}

	return bestThreshold, bestF1
}

func f1Score(tp, fp, fn int) float64 {
	if tp == 0 {
		return 0
	}
	precision := float64(tp) / float64(tp+fp)
	recall := float64(tp) / float64(tp+fn)
	return 2 * precision * recall / (precision + recall)
}

// corpusLine is one record in a labeled JSONL training corpus.
type corpusLine struct {
	Text   string `json:"text"`
	Header bool   `json:"header"`
}

// LoadCorpus reads a JSONL training corpus and annotates each line with its
// features. Position ratios are computed over the corpus order, which mirrors
// document order in corpora built from whole CVs.
func LoadCorpus(path string, headers *HeaderList) ([]Example, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer func() { _ = f.Close() }()

	var lines []corpusLine
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var cl corpusLine
		if err := json.Unmarshal([]byte(raw), &cl); err != nil {
			return nil, fmt.Errorf("parse corpus line %d: %w", len(lines)+1, err)
		}
		lines = append(lines, cl)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan corpus: %w", err)
	}

	extractor := NewFeatureExtractor(headers)
	examples := make([]Example, len(lines))
	for i, cl := range lines {
		examples[i] = Example{
			Features: extractor.Extract(cl.Text, i, len(lines)),
			Header:   cl.Header,
		}
	}

	return examples, nil
}
