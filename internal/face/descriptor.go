package face

import (
	"math"

	"github.com/sirupsen/logrus"
)

// descriptorStrategy matches by Euclidean distance between descriptor
// vectors: minimum distance wins, accepted when the distance does not exceed
// the configured threshold.
type descriptorStrategy struct {
	encoder   Encoder
	threshold float64
	logger    *logrus.Logger
}

func (s *descriptorStrategy) Name() Strategy {
	return StrategyDescriptor
}

func (s *descriptorStrategy) Match(faceCrop *Frame, templates []Template) (MatchResult, error) {
	result := MatchResult{Strategy: StrategyDescriptor}

	probe, err := s.encoder.Encode(faceCrop)
	if err != nil {
		return result, err
	}
	if len(probe) == 0 {
		return result, nil
	}

	bestDistance := math.Inf(1)
	var bestID uint

	for _, tpl := range templates {
		// Templates from the other strategy, or with a mismatched model
		// dimension, are skipped rather than aborting the pass.
		if len(tpl.Descriptor) == 0 || len(tpl.Descriptor) != len(probe) {
			continue
		}
		d := euclideanDistance(probe, tpl.Descriptor)
		if d < bestDistance {
			bestDistance = d
			bestID = tpl.EmployeeID
		}
	}

	if math.IsInf(bestDistance, 1) {
		return result, nil
	}

	result.Score = clamp01(1 - bestDistance)
	if bestDistance <= s.threshold {
		result.Matched = true
		result.EmployeeID = bestID
		s.logger.WithFields(logrus.Fields{
			"employee_id": bestID,
			"distance":    bestDistance,
		}).Debug("Descriptor match")
	}

	return result, nil
}

func euclideanDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
