package models

import (
	"encoding/json"
	"time"
)

type Employee struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `gorm:"not null" json:"name"`
	Email string `json:"email"`

	// FingerprintID holds the sensor template position as text. Manual mode
	// reuses it as the generic lookup key.
	FingerprintID       string `gorm:"index" json:"fingerprint_id"`
	FingerprintTemplate []byte `gorm:"type:blob" json:"-"`

	// FaceImagePath points at the enrolled face crop used by the keypoint
	// strategy. FaceDescriptor is the JSON-encoded descriptor vector used by
	// the descriptor strategy.
	FaceImagePath  string          `json:"face_image_path,omitempty"`
	FaceDescriptor json.RawMessage `gorm:"type:json" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Employee) TableName() string {
	return "employees"
}

// Descriptor decodes the stored face descriptor vector. Returns nil when no
// descriptor is enrolled.
func (e *Employee) Descriptor() ([]float64, error) {
	if len(e.FaceDescriptor) == 0 {
		return nil, nil
	}
	var v []float64
	if err := json.Unmarshal(e.FaceDescriptor, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// SetDescriptor stores the face descriptor vector as JSON.
func (e *Employee) SetDescriptor(v []float64) error {
	if v == nil {
		e.FaceDescriptor = nil
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	e.FaceDescriptor = raw
	return nil
}

func (e *Employee) HasFaceTemplate() bool {
	return len(e.FaceDescriptor) > 0 || e.FaceImagePath != ""
}

// IsValid checks the minimum identity data.
func (e *Employee) IsValid() bool {
	return e.Name != ""
}
