package face

import (
	"errors"
	"fmt"

	"attendance-station/internal/apperr"

	"github.com/sirupsen/logrus"
)

// Config carries the resolved matching and capture thresholds. Build a new
// Matcher after a settings change; the values are not re-read at call time.
type Config struct {
	// DistanceThreshold is the descriptor-strategy accept cutoff: a probe at
	// exactly the threshold is accepted.
	DistanceThreshold float64
	// MatchThreshold is the keypoint-strategy accept cutoff: a good-match
	// count equal to the threshold is accepted.
	MatchThreshold int

	// Enrollment quality gates.
	BrightnessMin     float64
	BrightnessMax     float64
	MinSharpness      float64
	RequireSingleFace bool
	MinFaceSide       int
	MaxEnrollFrames   int
}

// Deps bundles the matcher's collaborators. Encoder may be nil; the matcher
// then falls back to the keypoint strategy for the whole run.
type Deps struct {
	Detector  Detector
	Encoder   Encoder
	Extractor KeypointExtractor
	Images    ImageStore
}

// Matcher turns captured frames into enrolled templates or match decisions
// under the strategy selected at construction.
type Matcher struct {
	detector Detector
	encoder  Encoder
	images   ImageStore
	strategy matchStrategy
	cfg      Config
	logger   *logrus.Logger
}

func NewMatcher(deps Deps, cfg Config) (*Matcher, error) {
	if deps.Detector == nil {
		return nil, errors.New("face: detector is required")
	}
	if deps.Images == nil {
		return nil, errors.New("face: image store is required")
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if cfg.MinFaceSide <= 0 {
		cfg.MinFaceSide = 80
	}
	if cfg.MaxEnrollFrames <= 0 {
		cfg.MaxEnrollFrames = 60
	}

	m := &Matcher{
		detector: deps.Detector,
		encoder:  deps.Encoder,
		images:   deps.Images,
		cfg:      cfg,
		logger:   logger,
	}

	if deps.Encoder != nil {
		m.strategy = &descriptorStrategy{
			encoder:   deps.Encoder,
			threshold: cfg.DistanceThreshold,
			logger:    logger,
		}
	} else {
		if deps.Extractor == nil {
			return nil, errors.New("face: keypoint extractor is required when no encoder is available")
		}
		m.strategy = &keypointStrategy{
			extractor: deps.Extractor,
			images:    deps.Images,
			threshold: cfg.MatchThreshold,
			logger:    logger,
		}
	}

	logger.WithField("strategy", m.strategy.Name()).Info("Face matcher initialized")

	return m, nil
}

// Strategy reports the backend selected at construction.
func (m *Matcher) Strategy() Strategy {
	return m.strategy.Name()
}

// Verify matches a single frame against the stored templates. No face in the
// frame is a no-match with score 0, not an error.
func (m *Matcher) Verify(frame *Frame, templates []Template) (MatchResult, error) {
	noMatch := MatchResult{Strategy: m.strategy.Name()}
	if frame == nil || len(frame.Pix) == 0 {
		return noMatch, nil
	}

	faces := m.detector.Detect(frame)
	if len(faces) == 0 {
		return noMatch, nil
	}

	return m.strategy.Match(frame.Crop(faces[0]), templates)
}

// Enroll captures frames until the attempt budget runs out, keeps the largest
// acceptable face crop, guards against enrolling an already-known face, and
// persists the template. nextFrame returns the next camera frame or an error;
// existing carries the other employees' templates for the duplicate check.
func (m *Matcher) Enroll(employeeID uint, nextFrame func() (*Frame, error), existing []Template) (*Template, error) {
	best, gateReason := m.captureBest(nextFrame)
	if best == nil {
		if gateReason == "" {
			gateReason = "no face detected"
		}
		return nil, apperr.QualityRejected(gateReason)
	}

	if len(existing) > 0 {
		result, err := m.strategy.Match(best, existing)
		if err == nil && result.Matched {
			m.logger.WithFields(logrus.Fields{
				"employee_id": employeeID,
				"matched_id":  result.EmployeeID,
				"score":       result.Score,
			}).Warn("Enrollment rejected: face already enrolled")
			return nil, apperr.DuplicateIdentity(
				fmt.Sprintf("face already enrolled for employee %d", result.EmployeeID))
		}
	}

	// Nothing is written until the capture is fully accepted: a descriptor
	// failure must not leave a new crop overwriting a previous enrollment.
	tpl := &Template{EmployeeID: employeeID}
	if m.encoder != nil {
		desc, err := m.encoder.Encode(best)
		if err != nil {
			return nil, apperr.QualityRejected("failed to compute face descriptor")
		}
		tpl.Descriptor = desc
	}

	path, err := m.images.Save(employeeID, best)
	if err != nil {
		return nil, apperr.Storage("failed to store face image", err)
	}
	tpl.ImagePath = path

	m.logger.WithFields(logrus.Fields{
		"employee_id": employeeID,
		"strategy":    m.strategy.Name(),
		"path":        path,
	}).Info("Face enrolled")

	return tpl, nil
}

// captureBest drains up to MaxEnrollFrames frames and tracks the single
// largest detected face among frames passing the quality gates. Returns the
// best crop, or nil with the last gate failure.
func (m *Matcher) captureBest(nextFrame func() (*Frame, error)) (*Frame, string) {
	var best *Frame
	bestArea := 0
	reason := ""

	for i := 0; i < m.cfg.MaxEnrollFrames; i++ {
		frame, err := nextFrame()
		if err != nil || frame == nil {
			continue
		}

		if msg := m.checkQuality(frame); msg != "" {
			reason = msg
			continue
		}

		for _, r := range m.detector.Detect(frame) {
			if r.W < m.cfg.MinFaceSide || r.H < m.cfg.MinFaceSide {
				continue
			}
			if r.Area() > bestArea {
				bestArea = r.Area()
				best = frame.Crop(r)
			}
		}
	}

	return best, reason
}

// checkQuality applies the enrollment capture gates. Empty string means the
// frame is acceptable.
func (m *Matcher) checkQuality(frame *Frame) string {
	brightness := frame.MeanBrightness()
	if brightness < m.cfg.BrightnessMin {
		return fmt.Sprintf("frame too dark (brightness %.1f, floor %.1f)", brightness, m.cfg.BrightnessMin)
	}
	if m.cfg.BrightnessMax > 0 && brightness > m.cfg.BrightnessMax {
		return fmt.Sprintf("frame too bright (brightness %.1f, ceiling %.1f)", brightness, m.cfg.BrightnessMax)
	}

	if sharpness := frame.LaplacianVariance(); sharpness < m.cfg.MinSharpness {
		return fmt.Sprintf("frame too blurry (sharpness %.1f, floor %.1f)", sharpness, m.cfg.MinSharpness)
	}

	if m.cfg.RequireSingleFace {
		if n := len(m.detector.Detect(frame)); n > 1 {
			return fmt.Sprintf("%d faces detected, expected one", n)
		}
	}

	return ""
}
