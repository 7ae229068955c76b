package face

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ImageStore persists enrolled face crops for the keypoint strategy.
type ImageStore interface {
	Save(employeeID uint, faceCrop *Frame) (path string, err error)
	Load(path string) (*Frame, error)
}

// DirImageStore keeps one grayscale PGM file per employee under a directory,
// named employee_<id>.pgm. Re-enrollment overwrites the previous crop.
type DirImageStore struct {
	dir string
}

func NewDirImageStore(dir string) (*DirImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DirImageStore{dir: dir}, nil
}

func (s *DirImageStore) Save(employeeID uint, faceCrop *Frame) (string, error) {
	path := filepath.Join(s.dir, fmt.Sprintf("employee_%d.pgm", employeeID))

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := fmt.Fprintf(w, "P5\n%d %d\n255\n", faceCrop.Width, faceCrop.Height); err != nil {
		return "", err
	}
	if _, err := w.Write(faceCrop.Pix); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}

	return path, nil
}

func (s *DirImageStore) Load(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var magic string
	var width, height, maxVal int
	if _, err := fmt.Fscanf(r, "%s\n%d %d\n%d\n", &magic, &width, &height, &maxVal); err != nil {
		return nil, fmt.Errorf("invalid face image %s: %w", path, err)
	}
	if magic != "P5" || width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid face image %s: unsupported format", path)
	}

	frame := NewFrame(width, height)
	if _, err := io.ReadFull(r, frame.Pix); err != nil {
		return nil, fmt.Errorf("invalid face image %s: %w", path, err)
	}

	return frame, nil
}
