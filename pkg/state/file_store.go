package state

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goliatone/go-variants/internal/hydrate"
)

// FileStore keeps one JSON document per record under a directory, the local
// single-user analogue of the browser storage the records originally lived
// in. Keys map to "<dir>/<catalog>/<record>.json".
type FileStore[T any] struct {
	dir     string
	decoder *hydrate.Decoder[envelope[T]]
}

// envelope wraps a record with its storage metadata on disk.
type envelope[T any] struct {
	Snapshot T    `json:"snapshot"`
	Meta     Meta `json:"meta"`
}

// NewFileStore constructs a store rooted at dir. Directories are created
// lazily on first save. Legacy payloads without an envelope (a bare record
// object, as the original browser storage kept them) are normalized by a
// decode pre-hook.
func NewFileStore[T any](dir string) *FileStore[T] {
	return &FileStore[T]{
		dir: dir,
		decoder: hydrate.NewDecoder[envelope[T]](
			hydrate.WithPreHook[envelope[T]](wrapLegacyPayload),
		),
	}
}

func (s *FileStore[T]) Load(_ context.Context, ref Ref) (T, Meta, bool, error) {
	var zero T
	path, err := s.path(ref)
	if err != nil {
		return zero, Meta{}, false, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return zero, Meta{}, false, nil
	}
	if err != nil {
		return zero, Meta{}, false, fmt.Errorf("state: read %s: %w", path, err)
	}

	record, err := s.decoder.DecodeBytes(hydrate.Context{Catalog: ref.Catalog, Record: ref.Record}, normalizePayload(data))
	if err != nil {
		return zero, Meta{}, false, err
	}
	return record.Snapshot, cloneMeta(record.Meta), true, nil
}

// normalizePayload wraps non-object roots (a legacy bare array of options)
// so the decoder always sees an object; wrapLegacyPayload handles bare
// objects.
func normalizePayload(data []byte) []byte {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] == '{' {
		return data
	}
	wrapped := make([]byte, 0, len(data)+len(`{"snapshot":}`))
	wrapped = append(wrapped, `{"snapshot":`...)
	wrapped = append(wrapped, data...)
	return append(wrapped, '}')
}

func (s *FileStore[T]) Save(_ context.Context, ref Ref, snapshot T, meta Meta) (Meta, error) {
	path, err := s.path(ref)
	if err != nil {
		return Meta{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Meta{}, fmt.Errorf("state: mkdir for %s: %w", path, err)
	}

	data, err := json.MarshalIndent(envelope[T]{Snapshot: snapshot, Meta: meta}, "", "  ")
	if err != nil {
		return Meta{}, fmt.Errorf("state: marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Meta{}, fmt.Errorf("state: write %s: %w", path, err)
	}
	return cloneMeta(meta), nil
}

func (s *FileStore[T]) path(ref Ref) (string, error) {
	key, err := ref.Identifier()
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, filepath.FromSlash(key)+".json"), nil
}

// wrapLegacyPayload lifts a bare record object into the envelope shape.
func wrapLegacyPayload(_ hydrate.Context, payload map[string]any) (map[string]any, error) {
	if _, ok := payload["snapshot"]; ok {
		return payload, nil
	}
	return map[string]any{"snapshot": payload}, nil
}
