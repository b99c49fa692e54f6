package identity

import "github.com/danielpatrickdp/agent-identity/go-engine/internal/fixedpoint"

// #region evolve
// Evolve applies one explicit Euler step of the identity dynamics
// without creating a declaration: weights move with the experience
// signal, the self-model relaxes exponentially toward the weights.
// This is the slow-drift path, distinct from Declare's snap update.
func (r *Record) Evolve(experienceSignal []int64, timeStep uint64, clock Clock) (Evolved, error) {
	if len(experienceSignal) != int(r.DimensionCount) {
		return Evolved{}, ErrSignalLengthMismatch
	}

	// dw/dt = signal: delta = (signal * timeStep) / 10000, clamped.
	for i := 0; i < int(r.DimensionCount); i++ {
		delta := (experienceSignal[i] * int64(timeStep)) / fixedpoint.Scale
		r.Weights[i] = uint64(fixedpoint.Clamp(int64(r.Weights[i])+delta, 0, MaxWeight))
	}

	// dm/dt = -mu(m - w) with mu = 0.3 in fixed-point scale.
	for i := 0; i < int(r.DimensionCount); i++ {
		w := int64(r.Weights[i])
		m := int64(r.SelfModel[i])
		delta := (selfModelDecayRate * (w - m) * int64(timeStep)) / (fixedpoint.Scale * fixedpoint.Scale)
		r.SelfModel[i] = uint64(fixedpoint.Clamp(m+delta, 0, MaxWeight))
	}

	r.CoherenceScore = coherence(&r.Weights, &r.SelfModel, r.DimensionCount)
	r.Time += timeStep
	r.UpdatedAt = clock.UnixTime

	event := Evolved{
		Owner:          r.Owner,
		Time:           r.Time,
		CoherenceScore: r.CoherenceScore,
		Timestamp:      clock.UnixTime,
	}
	return event, nil
}

// #endregion evolve

// #region set-weights
// SetWeights overwrites the weights absolutely and snaps the self-model
// to match, forcing coherence to zero and discarding any drift history.
// Intended for initialization or recovery; routine sync should use
// Evolve, which preserves the relaxation relationship.
func (r *Record) SetWeights(newWeights []uint64, clock Clock) (WeightsSet, error) {
	if len(newWeights) != int(r.DimensionCount) {
		return WeightsSet{}, ErrDimensionWeightMismatch
	}
	for _, w := range newWeights {
		if w > MaxWeight {
			return WeightsSet{}, ErrWeightOutOfRange
		}
	}

	for i, w := range newWeights {
		r.Weights[i] = w
		r.SelfModel[i] = w
	}

	r.CoherenceScore = coherence(&r.Weights, &r.SelfModel, r.DimensionCount)
	r.UpdatedAt = clock.UnixTime

	event := WeightsSet{
		Owner:     r.Owner,
		Weights:   append([]uint64(nil), newWeights...),
		Timestamp: clock.UnixTime,
	}
	return event, nil
}

// #endregion set-weights
