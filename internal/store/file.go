package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"target-shooting/internal/scoring"
)

// Document is the on-disk layout shared with the legacy games.json export.
type Document struct {
	Games []scoring.Game `json:"games"`
}

func ReadDocument(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, err
	}
	for i := range doc.Games {
		if doc.Games[i].Version <= 0 {
			doc.Games[i].Version = 1
		}
		if doc.Games[i].Scores == nil {
			doc.Games[i].Scores = []scoring.PlayerRoomScores{}
		}
	}
	return doc, nil
}

func WriteDocument(w io.Writer, games []scoring.Game) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(Document{Games: games})
}

// File keeps every game in a single JSON file, rewritten atomically on each change.
type File struct {
	path string
	mem  *Memory
	mu   sync.Mutex
}

// OpenFile loads path if it exists. A missing file is an empty store.
func OpenFile(path string) (*File, error) {
	f := &File{path: path, mem: NewMemory()}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, storageErr("create data dir", err)
	}
	handle, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, storageErr("open data file", err)
	}
	defer handle.Close()
	doc, err := ReadDocument(handle)
	if err != nil {
		return nil, storageErr("decode data file", err)
	}
	for _, game := range doc.Games {
		f.mem.games[game.ID] = game.Clone()
	}
	return f, nil
}

func (f *File) Name() string {
	return "file"
}

func (f *File) Ping(ctx context.Context) error {
	dir := filepath.Dir(f.path)
	if _, err := os.Stat(dir); err != nil {
		return storageErr("stat data dir", err)
	}
	return ctx.Err()
}

func (f *File) Get(ctx context.Context, id string) (scoring.Game, error) {
	return f.mem.Get(ctx, id)
}

func (f *File) List(ctx context.Context) ([]scoring.Game, error) {
	return f.mem.List(ctx)
}

func (f *File) Create(ctx context.Context, game scoring.Game) (scoring.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	created, err := f.mem.Create(ctx, game)
	if err != nil {
		return scoring.Game{}, err
	}
	if err := f.flush(ctx); err != nil {
		f.mem.mu.Lock()
		delete(f.mem.games, game.ID)
		f.mem.mu.Unlock()
		return scoring.Game{}, err
	}
	return created, nil
}

func (f *File) Replace(ctx context.Context, game scoring.Game) (scoring.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	previous, err := f.mem.Get(ctx, game.ID)
	if err != nil {
		return scoring.Game{}, err
	}
	replaced, err := f.mem.Replace(ctx, game)
	if err != nil {
		return scoring.Game{}, err
	}
	if err := f.flush(ctx); err != nil {
		f.mem.mu.Lock()
		f.mem.games[game.ID] = previous
		f.mem.mu.Unlock()
		return scoring.Game{}, err
	}
	return replaced, nil
}

func (f *File) DeleteAll(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mem.mu.Lock()
	previous := f.mem.games
	f.mem.mu.Unlock()
	count, err := f.mem.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	if err := f.flush(ctx); err != nil {
		f.mem.mu.Lock()
		f.mem.games = previous
		f.mem.mu.Unlock()
		return 0, err
	}
	return count, nil
}

// flush writes a temp file next to the target and renames it over the original.
func (f *File) flush(ctx context.Context) error {
	games, err := f.mem.List(ctx)
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return storageErr("create data dir", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return storageErr("create temp file", err)
	}
	tmpName := tmp.Name()
	if err := WriteDocument(tmp, games); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return storageErr("write data file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return storageErr("close data file", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return storageErr(fmt.Sprintf("rename %s", tmpName), err)
	}
	return nil
}
