// Package snapshot reads the per-client ticket exports produced by the
// helpdesk fetcher.
package snapshot

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/zeebo/blake3"

	"github.com/spec-kit/ticket-report/internal/domain"
	apperrors "github.com/spec-kit/ticket-report/pkg/util/errorutil"
)

var (
	// ErrNotFound is returned when no snapshot matches the request.
	ErrNotFound = fmt.Errorf("snapshot %w", apperrors.ErrNotFound)
	// ErrEmpty is returned when a document has no content.
	ErrEmpty = errors.New("snapshot is empty")
)

// Snapshot is one export: client metadata plus the raw ticket records.
type Snapshot struct {
	ClientInfo   domain.ClientInfo `json:"client_info"`
	Tickets      []domain.Ticket   `json:"tickets"`
	SummaryStats map[string]any    `json:"summary_stats,omitempty"`
	Error        string            `json:"error,omitempty"`

	// Fingerprint is the blake3-256 hex digest of the raw document.
	Fingerprint string `json:"-"`
	// Source is the file the snapshot was read from, empty for uploads.
	Source string `json:"-"`
}

// Decode reads a whole snapshot document from r.
func Decode(r io.Reader) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return DecodeBytes(data)
}

// DecodeBytes decodes a snapshot document held in memory.
func DecodeBytes(data []byte) (*Snapshot, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmpty
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Tickets == nil {
		snap.Tickets = []domain.Ticket{}
	}
	snap.Fingerprint = Fingerprint(data)
	return &snap, nil
}

// Fingerprint hashes raw snapshot bytes.
func Fingerprint(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
