package media

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"giveflow/internal/pkg/config"
	"giveflow/internal/pkg/errs"
	"giveflow/internal/usecase/commands"

	"github.com/google/uuid"
)

// LocalStore writes evidence images to a directory served as static
// files. Object names are randomized; the original filename only
// contributes its extension.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(cfg config.MediaConfig) (*LocalStore, error) {
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, errs.Wrap(err, "failed to create media directory")
	}
	return &LocalStore{
		dir:     cfg.Dir,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
	}, nil
}

func (s *LocalStore) Upload(_ context.Context, asset commands.MediaAsset) (string, error) {
	name := uuid.New().String() + filepath.Ext(asset.Name)
	if err := os.WriteFile(filepath.Join(s.dir, name), asset.Content, 0o640); err != nil {
		return "", errs.Wrap(err, "failed to write media file")
	}
	return s.baseURL + "/" + path.Clean(name), nil
}
