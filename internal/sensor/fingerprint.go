package sensor

// Scanner is the fingerprint sensor contract. The serial wire protocol is the
// device wrapper's concern; callers only see position-space results. A
// position of -1 with ok=false means no stored template matched.
type Scanner interface {
	// Connect opens the sensor on the given serial port.
	Connect(port string) bool
	// Enroll stores a new template and reports its position and raw
	// characteristics. ok=false with position >= 0 means the finger was
	// already enrolled at that position.
	Enroll() (ok bool, position int, template []byte)
	// Verify scans a finger against the stored templates.
	Verify() (ok bool, position int)
	Disconnect()
}

var registered Scanner

// Register installs the scanner for this process. Device-specific wrappers
// call it from their init.
func Register(s Scanner) {
	registered = s
}

// Configured returns the registered scanner, falling back to one whose
// connects always fail when no device wrapper is linked in.
func Configured() Scanner {
	if registered != nil {
		return registered
	}
	return unconfigured{}
}

// Unconfigured returns a Scanner for stations with no sensor attached: every
// connect attempt fails, so identification surfaces sensor unavailability.
func Unconfigured() Scanner {
	return unconfigured{}
}

type unconfigured struct{}

func (unconfigured) Connect(string) bool           { return false }
func (unconfigured) Enroll() (bool, int, []byte)   { return false, -1, nil }
func (unconfigured) Verify() (bool, int)           { return false, -1 }
func (unconfigured) Disconnect()                   {}
