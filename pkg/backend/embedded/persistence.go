package embedded

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Hekkura/LibraryAppBE/pkg/domain"
	"github.com/pierrec/lz4/v4"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
)

// SaveToFile writes all indices to filename as an lz4 compressed msgpack snapshot
func (e *Engine) SaveToFile(filename string) error {
	e.mu.Lock()
	snapshot := NewSnapshotData()
	for name, idx := range e.indices {
		snapshot.Indices[name] = idx
	}
	snapshot.Metadata["saved_at"] = time.Now().UTC().Format(time.RFC3339)
	msgpackData, err := msgpack.Marshal(snapshot)
	if err == nil {
		e.dirty = false
	}
	e.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to encode MessagePack: %w", err)
	}

	compressedData := make([]byte, lz4.CompressBlockBound(len(msgpackData)))
	var hashTable [1 << 16]int
	n, err := lz4.CompressBlock(msgpackData, compressedData, hashTable[:])
	if err != nil {
		return fmt.Errorf("failed to compress data: %w", err)
	}
	compressedData = compressedData[:n]

	// Write to a temp file and rename
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	tmp := filename + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteHeader(file, len(msgpackData)); err != nil {
		file.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := file.Write(compressedData); err != nil {
		file.Close()
		return fmt.Errorf("failed to write compressed data: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return os.Rename(tmp, filename)
}

// LoadFromFile replaces the engine's indices with the snapshot in filename.
// A missing file is not an error.
func (e *Engine) LoadFromFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	header, err := ReadHeader(file)
	if err != nil {
		return fmt.Errorf("invalid file header: %w", err)
	}
	compressedData, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read compressed data: %w", err)
	}

	decompressedData := make([]byte, header.RawSize)
	n, err := lz4.UncompressBlock(compressedData, decompressedData)
	if err != nil {
		return fmt.Errorf("failed to decompress data: %w", err)
	}
	decompressedData = decompressedData[:n]

	var snapshot SnapshotData
	if err := msgpack.NewDecoder(bytes.NewReader(decompressedData)).Decode(&snapshot); err != nil {
		return fmt.Errorf("failed to decode MessagePack: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.indices = make(map[string]*Index, len(snapshot.Indices))
	for name, idx := range snapshot.Indices {
		if idx.Documents == nil {
			idx.Documents = make(map[string]domain.Document)
		}
		if idx.Mapping == nil {
			idx.Mapping = emptyMapping()
		}
		e.indices[name] = idx
	}
	e.dirty = false

	log.Info().Int("indices", len(e.indices)).Str("file", filename).Msg("snapshot loaded")
	return nil
}
