package face

// The computer-vision primitives are external collaborators, the same way the
// fingerprint sensor is: implementations wrap a vendor SDK or model runtime.
// The matcher only needs their outputs.

// Detector finds face regions in a frame.
type Detector interface {
	Detect(frame *Frame) []Rect
}

// Encoder computes a fixed-length numeric descriptor for a face crop. An
// Encoder is only available when the descriptor model artifacts loaded at
// startup; without one the matcher runs the keypoint strategy.
type Encoder interface {
	Encode(faceCrop *Frame) ([]float64, error)
}

// KeypointExtractor computes binary local-feature descriptors (ORB-style) for
// a face crop. Each descriptor is a fixed-length byte string compared by
// Hamming distance.
type KeypointExtractor interface {
	Extract(faceCrop *Frame) ([][]uint8, error)
}
