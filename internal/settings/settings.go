package settings

import (
	"strconv"

	"attendance-station/internal/repository"

	"github.com/sirupsen/logrus"
)

// Setting keys consumed by the core flows.
const (
	KeyAttendanceMode        = "attendance_mode"
	KeyDistanceThreshold     = "face_dlib_distance_threshold"
	KeyMatchThreshold        = "face_orb_match_threshold"
	KeyPreviewFPS            = "face_preview_fps"
	KeyVerifyRateHz          = "face_verify_rate_hz"
	KeyMinSharpness          = "enroll_min_sharpness"
	KeyBrightnessMin         = "enroll_brightness_min"
	KeyBrightnessMax         = "enroll_brightness_max"
	KeyRequireSingleFace     = "enroll_require_single_face"
	KeyFaceEnabled           = "face_enabled"
	KeyConfirmBeforeMark     = "face_confirm_before_mark"
	KeyCameraIndex           = "camera_index"
	KeyFingerprintPort       = "fingerprint_port"
	KeyEmailNotifications    = "email_notifications"
	KeySMTPServer            = "smtp_server"
	KeySMTPPort              = "smtp_port"
	KeySMTPUser              = "smtp_user"
	KeySMTPPassword          = "smtp_password"
	KeySMTPUseTLS            = "smtp_use_tls"
	KeySMTPUseSSL            = "smtp_use_ssl"
)

// Mode is the station authentication mode.
type Mode string

const (
	ModeFingerprint Mode = "fingerprint"
	ModeFace        Mode = "face"
	ModeManual      Mode = "manual"
)

// ParseMode normalizes a stored mode value, migrating legacy values from
// earlier releases. Unknown values fall back to fingerprint.
func ParseMode(v string) Mode {
	switch v {
	case "both", "fingerprint_only", string(ModeFingerprint):
		return ModeFingerprint
	case "facial_only", string(ModeFace):
		return ModeFace
	case string(ModeManual):
		return ModeManual
	default:
		return ModeFingerprint
	}
}

// Snapshot is a resolved, immutable view of the runtime settings. Components
// take a Snapshot at construction; a settings change means rebuilding them
// with a fresh one.
type Snapshot struct {
	AttendanceMode Mode

	DistanceThreshold float64
	MatchThreshold    int
	PreviewFPS        int
	VerifyRateHz      int

	MinSharpness      float64
	BrightnessMin     float64
	BrightnessMax     float64
	RequireSingleFace bool

	FaceEnabled       bool
	ConfirmBeforeMark bool
	CameraIndex       int
	FingerprintPort   string

	EmailEnabled bool
	SMTPServer   string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPUseTLS   bool
	SMTPUseSSL   bool
}

// Service reads and writes the persisted key/value settings store.
type Service struct {
	repo   repository.SettingRepository
	logger *logrus.Logger
}

func NewService(repo repository.SettingRepository) *Service {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return &Service{repo: repo, logger: logger}
}

// Get returns the stored value for key, or def when missing or unreadable.
func (s *Service) Get(key, def string) string {
	setting, err := s.repo.Get(key)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Failed to read setting, using default")
		return def
	}
	if setting == nil {
		return def
	}
	return setting.Value
}

// Set upserts a setting value.
func (s *Service) Set(key, value string) error {
	return s.repo.Upsert(key, value)
}

// All returns every stored setting as a map.
func (s *Service) All() (map[string]string, error) {
	rows, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

// Snapshot resolves all keys with their default contracts and clamps.
func (s *Service) Snapshot() Snapshot {
	return Snapshot{
		AttendanceMode: ParseMode(s.Get(KeyAttendanceMode, string(ModeFingerprint))),

		DistanceThreshold: s.getFloat(KeyDistanceThreshold, 0.6),
		MatchThreshold:    s.getInt(KeyMatchThreshold, 10),
		PreviewFPS:        clampInt(s.getInt(KeyPreviewFPS, 15), 5, 60),
		VerifyRateHz:      clampInt(s.getInt(KeyVerifyRateHz, 3), 1, 15),

		MinSharpness:      s.getFloat(KeyMinSharpness, 100),
		BrightnessMin:     s.getFloat(KeyBrightnessMin, 40),
		BrightnessMax:     s.getFloat(KeyBrightnessMax, 220),
		RequireSingleFace: s.getBool(KeyRequireSingleFace, true),

		FaceEnabled:       s.getBool(KeyFaceEnabled, false),
		ConfirmBeforeMark: s.getBool(KeyConfirmBeforeMark, false),
		CameraIndex:       s.getInt(KeyCameraIndex, 0),
		FingerprintPort:   s.Get(KeyFingerprintPort, ""),

		EmailEnabled: s.getBool(KeyEmailNotifications, false),
		SMTPServer:   s.Get(KeySMTPServer, ""),
		SMTPPort:     s.getInt(KeySMTPPort, 587),
		SMTPUser:     s.Get(KeySMTPUser, ""),
		SMTPPassword: s.Get(KeySMTPPassword, ""),
		SMTPUseTLS:   s.getBool(KeySMTPUseTLS, true),
		SMTPUseSSL:   s.getBool(KeySMTPUseSSL, false),
	}
}

func (s *Service) getInt(key string, def int) int {
	v, err := strconv.Atoi(s.Get(key, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return v
}

func (s *Service) getFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(s.Get(key, strconv.FormatFloat(def, 'f', -1, 64)), 64)
	if err != nil {
		return def
	}
	return v
}

func (s *Service) getBool(key string, def bool) bool {
	v, err := strconv.ParseBool(s.Get(key, strconv.FormatBool(def)))
	if err != nil {
		return def
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
