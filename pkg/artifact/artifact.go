package artifact

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	filePrefix  = "generated_image"
	stampLayout = "20060102_150405"
)

// Artifact describes one generated image written to durable storage.
// Artifacts are never deleted by this system.
type Artifact struct {
	Path      string    `json:"path"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
	Size      int64     `json:"size"`
}

// DecodeError reports a payload that was not valid base64.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode image payload: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// WriteError reports a failed write to durable storage.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Store writes decoded images into a directory. An empty Dir means the
// current working directory.
type Store struct {
	Dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// Persist decodes a base64 payload and writes it under the deterministic
// gallery name. The stamp is captured once per generation call so every
// payload from the same response shares it; the index keeps payloads
// from one response apart.
func (s *Store) Persist(blob, provider string, stamp time.Time, index int) (*Artifact, error) {
	data, err := base64.StdEncoding.DecodeString(StripDataURL(blob))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	path := filepath.Join(s.Dir, FileName(provider, stamp, index))
	if s.Dir != "" {
		if err := os.MkdirAll(s.Dir, 0755); err != nil {
			return nil, &WriteError{Path: path, Err: err}
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, &WriteError{Path: path, Err: err}
	}

	return &Artifact{
		Path:      path,
		Provider:  provider,
		CreatedAt: stamp,
		Size:      int64(len(data)),
	}, nil
}

// FileName builds the gallery filename. The pattern
// generated_image_{provider}_{YYYYMMDD}_{HHMMSS}_{index}.png is parsed
// by downstream consumers and must not change shape.
func FileName(provider string, stamp time.Time, index int) string {
	return fmt.Sprintf("%s_%s_%s_%d.png", filePrefix, SanitizeProvider(provider), stamp.Format(stampLayout), index)
}

// SanitizeProvider replaces filesystem-unsafe runes in a provider
// identifier so it can be embedded in a filename.
func SanitizeProvider(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
}

// StripDataURL removes a data URL header (data:image/png;base64,...)
// from a payload, leaving bare base64. Payloads without the header are
// returned unchanged.
func StripDataURL(blob string) string {
	if !strings.HasPrefix(blob, "data:image") {
		return blob
	}
	if i := strings.Index(blob, ","); i >= 0 {
		return blob[i+1:]
	}
	return blob
}
