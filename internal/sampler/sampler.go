// Package sampler draws tokens, token memories and Bernoulli gates from one
// injectable random source so that a whole run replays from a single seed.
package sampler

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"langchange/internal/model"
)

// ProbabilityTolerance bounds how far a distribution may sum away from 1.
const ProbabilityTolerance = 1e-9

var ErrInvalidDistribution = errors.New("invalid probability distribution")

// Source is the random capability every sampling call goes through.
// *rand.Rand satisfies it.
type Source interface {
	Float64() float64
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

type Sampler struct {
	src Source
}

// New seeds a math/rand source.
func New(seed int64) *Sampler {
	return &Sampler{src: rand.New(rand.NewSource(seed))}
}

func FromSource(src Source) (*Sampler, error) {
	if src == nil {
		return nil, fmt.Errorf("random source is required")
	}
	return &Sampler{src: src}, nil
}

// ValidateDistribution checks that p is a probability vector: entries in
// [0,1] summing to 1 within ProbabilityTolerance.
func ValidateDistribution(p []float64) error {
	if len(p) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidDistribution)
	}
	sum := 0.0
	for i, v := range p {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: p[%d]=%v", ErrInvalidDistribution, i, v)
		}
		sum += v
	}
	if math.Abs(sum-1) > ProbabilityTolerance {
		return fmt.Errorf("%w: sums to %v", ErrInvalidDistribution, sum)
	}
	return nil
}

// Binary returns the two-token distribution [pA, 1-pA] after validating it.
func Binary(pA float64) ([2]float64, error) {
	dist := [2]float64{pA, 1 - pA}
	if err := ValidateDistribution(dist[:]); err != nil {
		return [2]float64{}, err
	}
	return dist, nil
}

// Token draws the innovative token with probability pA.
func (s *Sampler) Token(pA float64) model.Token {
	if s.src.Float64() < pA {
		return model.Innovative
	}
	return model.Established
}

// Memory draws size independent tokens with P(innovative) = pA.
func (s *Sampler) Memory(size int, pA float64) ([]model.Token, error) {
	if size < 1 {
		return nil, fmt.Errorf("memory size must be >= 1, got %d", size)
	}
	if _, err := Binary(pA); err != nil {
		return nil, err
	}
	memory := make([]model.Token, size)
	for i := range memory {
		memory[i] = s.Token(pA)
	}
	return memory, nil
}

// Bernoulli succeeds with probability p.
func (s *Sampler) Bernoulli(p float64) bool {
	return s.src.Float64() < p
}

// Index picks uniformly from [0, n). n must be positive.
func (s *Sampler) Index(n int) int {
	return s.src.Intn(n)
}

func (s *Sampler) Shuffle(n int, swap func(i, j int)) {
	s.src.Shuffle(n, swap)
}

func (s *Sampler) Float64() float64 {
	return s.src.Float64()
}
