// Package signals turns named per-dimension feedback into the signed
// experience-signal vector consumed by the evolution step.
package signals

import (
	"fmt"

	"github.com/danielpatrickdp/agent-identity/go-engine/internal/fixedpoint"
)

// #region feedback
// Feedback is one scored observation against a named dimension. Score
// is fixed-point: 10000 is the strongest reinforcement, -10000 the
// strongest suppression.
type Feedback struct {
	Dimension string `json:"dimension"`
	Score     int64  `json:"score"`
}

// #endregion feedback

// #region config
// ProducerConfig holds tuning knobs for signal accumulation.
type ProducerConfig struct {
	Gain      int64 // multiplier applied to each feedback score, in percent
	MaxSignal int64 // per-dimension clamp on the accumulated signal
}

// DefaultProducerConfig returns sensible defaults: unit gain, signals
// clamped to one full-scale step per dimension.
func DefaultProducerConfig() ProducerConfig {
	return ProducerConfig{
		Gain:      100,
		MaxSignal: fixedpoint.Scale,
	}
}

// #endregion config

// #region producer
// Producer maps dimension names to vector indices for one vocabulary.
type Producer struct {
	index  map[string]int
	dims   int
	config ProducerConfig
}

// NewProducer creates a Producer over the record's dimension names.
func NewProducer(dimensionNames []string, config ProducerConfig) *Producer {
	index := make(map[string]int, len(dimensionNames))
	for i, name := range dimensionNames {
		index[name] = i
	}
	return &Producer{index: index, dims: len(dimensionNames), config: config}
}

// Produce accumulates feedback into a signal vector sized to the
// vocabulary. Multiple feedback entries on the same dimension sum
// before clamping. Unknown dimensions are rejected.
func (p *Producer) Produce(feedback []Feedback) ([]int64, error) {
	signal := make([]int64, p.dims)
	for _, f := range feedback {
		i, ok := p.index[f.Dimension]
		if !ok {
			return nil, fmt.Errorf("signals: unknown dimension %q", f.Dimension)
		}
		signal[i] += (f.Score * p.config.Gain) / 100
	}
	for i := range signal {
		signal[i] = fixedpoint.Clamp(signal[i], -p.config.MaxSignal, p.config.MaxSignal)
	}
	return signal, nil
}

// #endregion producer
