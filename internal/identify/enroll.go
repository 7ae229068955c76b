package identify

import (
	"fmt"
	"strconv"

	"attendance-station/internal/apperr"
	"attendance-station/internal/camera"
	"attendance-station/internal/face"
	"attendance-station/internal/models"

	"github.com/sirupsen/logrus"
)

// EnrollFace captures the employee's face and persists the template under the
// active strategy. A capture matching another employee's enrolled face blocks
// the enrollment; nothing is written in that case.
func (c *Coordinator) EnrollFace(employeeID uint) (*models.Employee, error) {
	if c.matcher == nil {
		return nil, apperr.SensorUnavailable("no face engine configured")
	}

	employee, err := c.employees.GetByID(employeeID)
	if err != nil {
		return nil, apperr.Storage("failed to look up employee", err)
	}
	if employee == nil {
		return nil, apperr.NotFound(fmt.Sprintf("employee %d not found", employeeID))
	}

	capture, err := camera.Acquire(c.camera, c.cfg.CameraIndex)
	if err != nil {
		return nil, err
	}
	defer capture.Release()

	existing, err := c.loadTemplates(employeeID)
	if err != nil {
		return nil, err
	}

	template, err := c.matcher.Enroll(employeeID, capture.Read, existing)
	if err != nil {
		return nil, err
	}

	if err := c.applyFaceTemplate(employee, template); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"employee_id": employee.ID,
		"strategy":    c.matcher.Strategy(),
	}).Info("Face template enrolled")

	return employee, nil
}

func (c *Coordinator) applyFaceTemplate(employee *models.Employee, template *face.Template) error {
	employee.FaceImagePath = template.ImagePath
	if err := employee.SetDescriptor(template.Descriptor); err != nil {
		return apperr.Storage("failed to encode face descriptor", err)
	}
	if err := c.employees.Update(employee); err != nil {
		return apperr.Storage("failed to save face template", err)
	}
	return nil
}

// EnrollFingerprint runs sensor enrollment and stores the template position
// on the employee.
func (c *Coordinator) EnrollFingerprint(employeeID uint) (*models.Employee, error) {
	employee, err := c.employees.GetByID(employeeID)
	if err != nil {
		return nil, apperr.Storage("failed to look up employee", err)
	}
	if employee == nil {
		return nil, apperr.NotFound(fmt.Sprintf("employee %d not found", employeeID))
	}

	if c.cfg.FingerprintPort == "" {
		return nil, apperr.SensorUnavailable("no fingerprint port configured")
	}
	if !c.scanner.Connect(c.cfg.FingerprintPort) {
		return nil, apperr.SensorUnavailable(
			fmt.Sprintf("scanner not reachable on port %s", c.cfg.FingerprintPort))
	}
	defer c.scanner.Disconnect()

	ok, position, template := c.scanner.Enroll()
	if !ok {
		if position >= 0 {
			return nil, apperr.DuplicateIdentity(
				fmt.Sprintf("fingerprint already enrolled at position %d", position))
		}
		return nil, apperr.SensorUnavailable("fingerprint enrollment failed")
	}

	employee.FingerprintID = strconv.Itoa(position)
	employee.FingerprintTemplate = template
	if err := c.employees.Update(employee); err != nil {
		return nil, apperr.Storage("failed to save fingerprint enrollment", err)
	}

	c.logger.WithFields(logrus.Fields{
		"employee_id": employee.ID,
		"position":    position,
	}).Info("Fingerprint enrolled")

	return employee, nil
}
