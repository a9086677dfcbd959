// Package object stores uploaded resume files. Keys returned by Save are
// persisted as resumes.file_path and later handed back to Open and Delete.
package object

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/google/uuid"

	"ngmi-backend/internal/shared/util"
)

// ObjectStore saves, reads and removes resume files.
type ObjectStore interface {
	Save(ctx context.Context, ownerKey string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}

// NewKey builds "<owner digest>/<uuid>_<file name>". The owner id is hashed
// so keys do not reveal user ids, and the uuid keeps re-uploads of the same
// file name apart.
func NewKey(ownerKey, fileName string) (string, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	sum := sha256.Sum256([]byte(ownerKey))
	return path.Join(hex.EncodeToString(sum[:]), uuid.NewString()+"_"+name), nil
}

// Sniff detects the content type from the head of r and returns a reader
// that still yields the whole stream.
func Sniff(r io.Reader) (string, io.Reader, error) {
	var head [512]byte
	n, err := io.ReadFull(r, head[:])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, fmt.Errorf("read head: %w", err)
	}
	return http.DetectContentType(head[:n]), io.MultiReader(bytes.NewReader(head[:n]), r), nil
}
