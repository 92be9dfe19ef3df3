package embedded

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/Hekkura/LibraryAppBE/pkg/domain"
)

const (
	// Magic bytes to identify a snapshot file
	MagicBytes = "LABE"
	// Current version
	FormatVersion = 1
	// File extension for snapshots
	FileExtension = ".labe"
)

// FileHeader represents the header of a snapshot file
type FileHeader struct {
	Magic    [4]byte // "LABE"
	Version  uint8   // Format version
	Flags    uint8   // Reserved for future use
	Reserved [2]byte // Reserved for future use
	RawSize  uint32  // Size of the msgpack payload before compression
}

// WriteHeader writes the snapshot header to the given writer
func WriteHeader(w io.Writer, rawSize int) error {
	header := FileHeader{
		Magic:   [4]byte{'L', 'A', 'B', 'E'},
		Version: FormatVersion,
		RawSize: uint32(rawSize),
	}

	return binary.Write(w, binary.LittleEndian, header)
}

// ReadHeader reads and validates the snapshot header
func ReadHeader(r io.Reader) (*FileHeader, error) {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if string(header.Magic[:]) != MagicBytes {
		return nil, fmt.Errorf("invalid file format: expected %s, got %s", MagicBytes, string(header.Magic[:]))
	}

	if header.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported file version: %d", header.Version)
	}

	return &header, nil
}

// Index is one backend index held in memory
type Index struct {
	Name      string                     `msgpack:"name"`
	UUID      string                     `msgpack:"uuid"`
	Settings  domain.IndexSettings       `msgpack:"settings"`
	Mapping   map[string]interface{}     `msgpack:"mapping"`
	Documents map[string]domain.Document `msgpack:"documents"`
	CreatedAt time.Time                  `msgpack:"created_at"`
}

// SnapshotData represents the data structure written to disk
type SnapshotData struct {
	Indices  map[string]*Index      `msgpack:"indices"`
	Metadata map[string]interface{} `msgpack:"metadata,omitempty"`
}

// NewSnapshotData creates a new empty snapshot
func NewSnapshotData() *SnapshotData {
	return &SnapshotData{
		Indices:  make(map[string]*Index),
		Metadata: make(map[string]interface{}),
	}
}
