// Package uploads stores file attachments sent over the chat. The core
// only ever handles the stored filename; blobs live on disk and are
// served statically.
package uploads

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrBadDataURL indicates an attachment payload that is not a valid
// base64 data URL.
var ErrBadDataURL = errors.New("malformed data URL")

type Saver struct {
	dir string
}

func NewSaver(dir string) (*Saver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Saver{dir: dir}, nil
}

// Save decodes a base64 data URL and writes it under a fresh
// collision-resistant name, keeping the original extension when there
// is one and sniffing the content type when there is not. It returns
// the stored filename.
func (s *Saver) Save(originalName, dataURL string) (string, error) {
	data, err := decodeDataURL(dataURL)
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(originalName)
	if ext == "" {
		ext = mimetype.Detect(data).Extension()
	}
	filename := uuid.NewString() + ext

	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}

	logrus.WithFields(logrus.Fields{
		"file": filename,
		"size": len(data),
	}).Info("file saved")
	return filename, nil
}

func decodeDataURL(dataURL string) ([]byte, error) {
	// data:<mediatype>;base64,<payload>
	_, payload, found := strings.Cut(dataURL, ",")
	if !found {
		return nil, ErrBadDataURL
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrBadDataURL
	}
	return data, nil
}
