package face

import (
	"math/bits"

	"github.com/sirupsen/logrus"
)

// goodMatchMaxDistance is the per-match Hamming cutoff below which a
// keypoint pair counts as a good match.
const goodMatchMaxDistance = 40

// keypointStrategy matches by counting cross-checked keypoint pairs whose
// Hamming distance falls under the per-match cutoff. The template with the
// most good matches wins, accepted when the count reaches the configured
// threshold.
type keypointStrategy struct {
	extractor KeypointExtractor
	images    ImageStore
	threshold int
	logger    *logrus.Logger
}

func (s *keypointStrategy) Name() Strategy {
	return StrategyKeypoint
}

func (s *keypointStrategy) Match(faceCrop *Frame, templates []Template) (MatchResult, error) {
	result := MatchResult{Strategy: StrategyKeypoint}

	probe, err := s.extractor.Extract(faceCrop)
	if err != nil {
		return result, err
	}
	if len(probe) == 0 {
		return result, nil
	}

	bestCount := 0
	var bestID uint

	for _, tpl := range templates {
		if tpl.ImagePath == "" {
			continue
		}

		// Corrupt or missing stored templates are skipped individually.
		img, err := s.images.Load(tpl.ImagePath)
		if err != nil {
			s.logger.WithError(err).WithField("path", tpl.ImagePath).Warn("Skipping unreadable face template")
			continue
		}
		stored, err := s.extractor.Extract(img)
		if err != nil || len(stored) == 0 {
			continue
		}

		count := goodMatchCount(probe, stored)
		if count > bestCount {
			bestCount = count
			bestID = tpl.EmployeeID
		}
	}

	result.Score = float64(bestCount)
	if bestCount >= s.threshold && bestID != 0 {
		result.Matched = true
		result.EmployeeID = bestID
		s.logger.WithFields(logrus.Fields{
			"employee_id":  bestID,
			"good_matches": bestCount,
		}).Debug("Keypoint match")
	}

	return result, nil
}

// goodMatchCount emulates brute-force matching with cross-check: a pair
// counts only when each descriptor is the other's nearest neighbor and their
// distance is under the good-match cutoff.
func goodMatchCount(probe, stored [][]uint8) int {
	count := 0
	for i, p := range probe {
		j, d := nearest(p, stored)
		if j < 0 || d >= goodMatchMaxDistance {
			continue
		}
		back, _ := nearest(stored[j], probe)
		if back == i {
			count++
		}
	}
	return count
}

func nearest(desc []uint8, candidates [][]uint8) (int, int) {
	bestIdx, bestDist := -1, int(^uint(0)>>1)
	for i, c := range candidates {
		d := hammingDistance(desc, c)
		if d < bestDist {
			bestDist = d
			bestIdx = i
		}
	}
	return bestIdx, bestDist
}

func hammingDistance(a, b []uint8) int {
	if len(a) != len(b) {
		return int(^uint(0) >> 1)
	}
	d := 0
	for i := range a {
		d += bits.OnesCount8(a[i] ^ b[i])
	}
	return d
}
