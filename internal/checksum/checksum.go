package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Writer computes a digest incrementally. Feed it through an io.MultiWriter
// alongside the destination so ingestion reads the upload stream only once.
type Writer struct {
	h hash.Hash
}

// NewWriter returns a Writer ready to receive content.
func NewWriter() *Writer {
	return &Writer{h: sha256.New()}
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	return w.h.Write(p)
}

// Sum returns the hex-encoded digest of everything written so far.
func (w *Writer) Sum() string {
	return hex.EncodeToString(w.h.Sum(nil))
}
