package tracks

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/tunequiz/tunequiz/internal/dependencies/random"
	"github.com/tunequiz/tunequiz/internal/model"
)

// libraryFile is the on-disk layout of a track list
type libraryFile struct {
	Tracks []model.Track `json:"tracks"`
}

// Library holds the immutable set of tracks available for a game
type Library struct {
	tracks []model.Track
	logger *slog.Logger
}

// New creates a library from an in-memory track list
func New(tracks []model.Track, logger *slog.Logger) (*Library, error) {
	if len(tracks) == 0 {
		return nil, model.ErrLibraryEmpty
	}

	// Assign identifiers to tracks that lack them
	for i := range tracks {
		if tracks[i].ID == "" {
			tracks[i].ID = model.TrackID(fmt.Sprintf("track-%d", i+1))
		}
	}

	for _, t := range tracks {
		if t.Title == "" || t.Artist == "" {
			return nil, fmt.Errorf("%w: track %q", model.ErrInvalidTrack, t.ID)
		}
	}

	return &Library{tracks: tracks, logger: logger}, nil
}

// LoadFile reads a JSON track list from disk
func LoadFile(path string, logger *slog.Logger) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", model.ErrLibraryNotFound, path)
		}
		return nil, fmt.Errorf("read track library: %w", err)
	}

	var file libraryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse track library: %w", err)
	}

	lib, err := New(file.Tracks, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("track library loaded",
		slog.String("path", path),
		slog.Int("tracks", len(file.Tracks)),
	)
	return lib, nil
}

// Len returns the number of tracks in the library
func (l *Library) Len() int {
	return len(l.tracks)
}

// Get returns the track with the given ID
func (l *Library) Get(id model.TrackID) (*model.Track, error) {
	for i := range l.tracks {
		if l.tracks[i].ID == id {
			track := l.tracks[i]
			return &track, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", model.ErrInvalidTrack, id)
}

// Sequence returns the game's track order: every track exactly once,
// shuffled when requested. The library itself is never mutated.
func (l *Library) Sequence(rnd random.Random, shuffle bool) []*model.Track {
	seq := make([]*model.Track, len(l.tracks))
	for i := range l.tracks {
		track := l.tracks[i]
		seq[i] = &track
	}
	if shuffle {
		rnd.Shuffle(len(seq), func(i, j int) {
			seq[i], seq[j] = seq[j], seq[i]
		})
	}
	return seq
}
