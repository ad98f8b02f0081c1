package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"
)

const metadataFileName = "metadata.json"

// Metadata records when the data directory was last fully refreshed.
type Metadata struct {
	Updated time.Time `json:"updated"`
}

// WriteJSON atomically writes value as JSON under the data directory.
func (s *Store) WriteJSON(ctx context.Context, name string, value any) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	enc := sonic.ConfigDefault.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	if err := s.writeFileAtomic(name, buf.B); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "json snapshot written", "file", name, "bytes", buf.Len())
	return nil
}

// ReadJSON decodes a JSON file from the data directory into target.
// ok is false when the file does not exist yet.
func (s *Store) ReadJSON(_ context.Context, name string, target any) (bool, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", name, err)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return false, fmt.Errorf("decode %s: %w", name, err)
	}
	return true, nil
}

// WriteMetadata stamps the last-successful-update marker. Callers
// only invoke this after every table of the run has been written.
func (s *Store) WriteMetadata(ctx context.Context, updated time.Time) error {
	return s.WriteJSON(ctx, metadataFileName, Metadata{Updated: updated.UTC()})
}

// ReadMetadata returns the last-successful-update marker, if any.
func (s *Store) ReadMetadata(ctx context.Context) (Metadata, bool, error) {
	var meta Metadata
	ok, err := s.ReadJSON(ctx, metadataFileName, &meta)
	return meta, ok, err
}

func (s *Store) writeFileAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename %s into place: %w", name, err)
	}
	return nil
}
