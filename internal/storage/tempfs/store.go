package tempfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store 管理临时落盘文件（用户上传的字体、渲染出的缩略图），文件名由 uuid 生成。
type Store struct {
	dir    string
	logger *zap.Logger
}

// New 创建 Store，目录不存在时自动创建。dir 为空时使用系统临时目录下的子目录。
func New(dir string, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		dir = filepath.Join(os.TempDir(), "manga-thumb")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}

	return &Store{dir: dir, logger: logger.Named("tempfs")}, nil
}

// Dir returns the directory holding the artifacts.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes data to a new file named "<prefix>-<uuid><ext>" and returns its path.
func (s *Store) Save(prefix, ext string, data []byte) (string, error) {
	file, err := s.Create(prefix, ext)
	if err != nil {
		return "", err
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		s.Remove(file.Name())
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := file.Close(); err != nil {
		s.Remove(file.Name())
		return "", fmt.Errorf("close artifact: %w", err)
	}
	return file.Name(), nil
}

// Create opens a new empty artifact file for writing.
func (s *Store) Create(prefix, ext string) (*os.File, error) {
	name := fmt.Sprintf("%s-%s%s", prefix, uuid.NewString(), ext)
	file, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create artifact: %w", err)
	}
	return file, nil
}

// Remove deletes an artifact. Paths outside the store directory are ignored.
func (s *Store) Remove(path string) {
	if path == "" {
		return
	}
	if !s.owns(path) {
		s.logger.Warn("refusing to remove file outside artifact dir", zap.String("path", path))
		return
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("remove artifact failed", zap.String("path", path), zap.Error(err))
		return
	}
	s.logger.Debug("artifact removed", zap.String("path", path))
}

func (s *Store) owns(path string) bool {
	rel, err := filepath.Rel(s.dir, path)
	if err != nil {
		return false
	}
	return rel != "." && !strings.HasPrefix(rel, "..")
}
