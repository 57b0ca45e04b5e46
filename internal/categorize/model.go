package categorize

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jbrukh/bayesian"

	"github.com/Veraticus/spice-extract/internal/common"
)

const modelVersion = 1

// Example is one labeled description used for training.
type Example struct {
	Text     string
	Category string
}

// Prediction is the classifier's answer for one text.
type Prediction struct {
	Distribution map[string]float64
	Category     string
	Confidence   float64
}

// Model is a trained naive Bayes text classifier. It is read-only once
// built; retraining produces a new Model.
type Model struct {
	classifier *bayesian.Classifier
	vocabulary map[string]struct{}
	classes    []string
}

// envelope is the on-disk form of a Model.
type envelope struct {
	Vocabulary []string
	Classes    []string
	Classifier []byte
	Version    int
}

// Tokens normalizes text and returns its words plus adjacent word pairs.
func Tokens(text string) []string {
	words := strings.Fields(common.NormalizeText(text))
	kept := words[:0]
	for _, w := range words {
		if len([]rune(w)) >= 2 {
			kept = append(kept, w)
		}
	}
	tokens := make([]string, 0, 2*len(kept))
	tokens = append(tokens, kept...)
	for i := 1; i < len(kept); i++ {
		tokens = append(tokens, kept[i-1]+"_"+kept[i])
	}
	return tokens
}

// Train builds a model from labeled examples. At least two categories with
// usable text are required.
func Train(examples []Example) (*Model, error) {
	byClass := make(map[string]struct{})
	usable := make([]Example, 0, len(examples))
	for _, ex := range examples {
		cat := strings.TrimSpace(ex.Category)
		if cat == "" || len(Tokens(ex.Text)) == 0 {
			continue
		}
		byClass[cat] = struct{}{}
		usable = append(usable, Example{Text: ex.Text, Category: cat})
	}
	if len(byClass) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 categories, have %d", common.ErrInsufficientTrainingData, len(byClass))
	}

	classes := make([]string, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Strings(classes)

	bc := make([]bayesian.Class, len(classes))
	for i, c := range classes {
		bc[i] = bayesian.Class(c)
	}
	classifier := bayesian.NewClassifier(bc...)

	vocab := make(map[string]struct{})
	for _, ex := range usable {
		tokens := Tokens(ex.Text)
		classifier.Learn(tokens, bayesian.Class(ex.Category))
		for _, t := range tokens {
			vocab[t] = struct{}{}
		}
	}

	return &Model{classifier: classifier, vocabulary: vocab, classes: classes}, nil
}

// Classes returns the categories the model can predict, sorted.
func (m *Model) Classes() []string {
	out := make([]string, len(m.classes))
	copy(out, m.classes)
	return out
}

// Predict classifies text. It reports false when the text has no token the
// model has seen, when the best class is tied, or when scoring underflows.
func (m *Model) Predict(text string) (Prediction, bool) {
	if m == nil || m.classifier == nil {
		return Prediction{}, false
	}

	var known []string
	for _, t := range Tokens(text) {
		if _, ok := m.vocabulary[t]; ok {
			known = append(known, t)
		}
	}
	if len(known) == 0 {
		return Prediction{}, false
	}

	scores, best, strict, err := m.classifier.SafeProbScores(known)
	if err != nil || !strict {
		return Prediction{}, false
	}

	dist := make(map[string]float64, len(scores))
	for i, s := range scores {
		dist[string(m.classifier.Classes[i])] = s
	}
	return Prediction{
		Category:     string(m.classifier.Classes[best]),
		Confidence:   clamp(scores[best]),
		Distribution: dist,
	}, true
}

// Save writes the model to w.
func (m *Model) Save(w io.Writer) error {
	var buf bytes.Buffer
	if err := m.classifier.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to encode classifier: %w", err)
	}

	vocab := make([]string, 0, len(m.vocabulary))
	for t := range m.vocabulary {
		vocab = append(vocab, t)
	}
	sort.Strings(vocab)

	env := envelope{Version: modelVersion, Vocabulary: vocab, Classes: m.classes, Classifier: buf.Bytes()}
	if err := gob.NewEncoder(w).Encode(&env); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	return nil
}

// LoadModel reads a model written by Save.
func LoadModel(r io.Reader) (*Model, error) {
	var env envelope
	if err := gob.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	if env.Version != modelVersion {
		return nil, fmt.Errorf("%w: model version %d, want %d", common.ErrInvalidConfig, env.Version, modelVersion)
	}

	classifier, err := bayesian.NewClassifierFromReader(bytes.NewReader(env.Classifier))
	if err != nil {
		return nil, fmt.Errorf("failed to decode classifier: %w", err)
	}

	vocab := make(map[string]struct{}, len(env.Vocabulary))
	for _, t := range env.Vocabulary {
		vocab[t] = struct{}{}
	}
	return &Model{classifier: classifier, vocabulary: vocab, classes: env.Classes}, nil
}

// SaveFile writes the model atomically: readers of path see either the old
// model or the new one, never a partial file.
func (m *Model) SaveFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".model-*")
	if err != nil {
		return fmt.Errorf("failed to create temp model: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := m.Save(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp model: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to install model: %w", err)
	}
	return nil
}

// LoadModelFile reads a model from disk.
func LoadModelFile(path string) (*Model, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return LoadModel(f)
}
