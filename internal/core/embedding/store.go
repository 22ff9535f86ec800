package embedding

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/agenthands/companion/internal/core/model"
)

const formatVersion = 1

var (
	// ErrNotTrained means no embedding file exists yet.
	ErrNotTrained = errors.New("embeddings not trained")
	// ErrCorrupt means the embedding file exists but cannot be used.
	ErrCorrupt = errors.New("embedding file corrupt")
)

type fileDocument struct {
	FormatVersion int        `json:"format_version"`
	Dimensions    int        `json:"dimensions"`
	TrainedAt     time.Time  `json:"trained_at"`
	Nodes         []fileNode `json:"nodes"`
}

type fileNode struct {
	Kind   string    `json:"kind"`
	ID     string    `json:"id"`
	Vector []float32 `json:"vector"`
}

// FileStore keeps one Space in a single JSON file. Saves replace the file
// atomically via rename.
type FileStore struct {
	Path   string
	logger zerolog.Logger
}

func NewFileStore(path string, logger zerolog.Logger) *FileStore {
	return &FileStore{Path: path, logger: logger}
}

// Save writes the space. An empty space is not written.
func (s *FileStore) Save(space *Space) error {
	if space.Len() == 0 {
		s.logger.Warn().Str("path", s.Path).Msg("no vectors to save")
		return nil
	}

	doc := fileDocument{
		FormatVersion: formatVersion,
		Dimensions:    space.Dimensions(),
		TrainedAt:     space.TrainedAt,
		Nodes:         make([]fileNode, 0, space.Len()),
	}
	for _, e := range space.Entries() {
		doc.Nodes = append(doc.Nodes, fileNode{Kind: e.Ref.Kind.String(), ID: e.Ref.ID, Vector: e.Vector})
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create embedding directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".embeddings-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp embedding file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := json.NewEncoder(tmp).Encode(doc); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode embeddings: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync embeddings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close embeddings: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("replace embedding file: %w", err)
	}

	s.logger.Info().Str("path", s.Path).Int("nodes", space.Len()).Msg("saved embeddings")
	return nil
}

// Load reads the space back. It returns ErrNotTrained when the file is
// absent and an error wrapping ErrCorrupt when it cannot be decoded.
func (s *FileStore) Load() (*Space, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotTrained, s.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("read embedding file: %w", err)
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if doc.FormatVersion != formatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", ErrCorrupt, doc.FormatVersion)
	}
	if doc.Dimensions < 1 {
		return nil, fmt.Errorf("%w: invalid dimensions %d", ErrCorrupt, doc.Dimensions)
	}

	space := NewSpace(doc.Dimensions)
	space.TrainedAt = doc.TrainedAt
	for _, n := range doc.Nodes {
		ref := model.NodeRef{Kind: model.ParseNodeKind(n.Kind), ID: n.ID}
		if err := space.Add(ref, n.Vector); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
	}
	return space, nil
}
