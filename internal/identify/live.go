package identify

import (
	"context"
	"time"

	"attendance-station/internal/apperr"
	"attendance-station/internal/camera"

	"github.com/sirupsen/logrus"
)

// IdentifyFace streams camera frames until one clears the match threshold or
// ctx is cancelled. Frames are read at the preview cadence to keep the device
// drained; verification runs at the slower verify cadence to bound descriptor
// work per second. The camera is released on every exit path.
func (c *Coordinator) IdentifyFace(ctx context.Context) (*MarkResult, error) {
	if c.matcher == nil {
		return nil, apperr.SensorUnavailable("no face engine configured")
	}
	if !c.cfg.FaceEnabled {
		return nil, apperr.SensorUnavailable("face recognition is disabled")
	}

	capture, err := camera.Acquire(c.camera, c.cfg.CameraIndex)
	if err != nil {
		return nil, err
	}
	defer capture.Release()

	templates, err := c.loadTemplates(0)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, apperr.NoMatch("no faces enrolled")
	}

	frameInterval := time.Second / time.Duration(c.cfg.PreviewFPS)
	verifyInterval := time.Second / time.Duration(c.cfg.VerifyRateHz)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	var lastVerify time.Time

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		frame, err := capture.Read()
		if err != nil || frame == nil {
			continue
		}

		if time.Since(lastVerify) < verifyInterval {
			continue
		}
		lastVerify = time.Now()

		result, err := c.matcher.Verify(frame, templates)
		if err != nil {
			c.logger.WithError(err).Debug("Verification pass failed")
			continue
		}
		if !result.Matched {
			continue
		}

		employee, err := c.employees.GetByID(result.EmployeeID)
		if err != nil {
			return nil, apperr.Storage("failed to look up employee", err)
		}
		if employee == nil {
			c.logger.WithField("employee_id", result.EmployeeID).Warn("Matched face has no employee row")
			continue
		}

		c.logger.WithFields(logrus.Fields{
			"employee_id": employee.ID,
			"score":       result.Score,
			"strategy":    result.Strategy,
		}).Info("Face recognized")

		return c.mark(employee, result.Score)
	}
}
