package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DiskStore 落盘实现：文件写到 Dir 下，由 api 进程以 BaseURL 静态回源。
type DiskStore struct {
	Dir     string
	BaseURL string
}

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *DiskStore) Save(ctx context.Context, p string, r io.Reader, contentType string) (string, error) {
	// 拒绝路径穿越
	clean := path.Clean("/" + p)
	full := filepath.Join(s.Dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(full)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(full)
		return "", err
	}
	return strings.TrimPrefix(clean, "/"), nil
}

func (s *DiskStore) URL(ref string) string {
	return s.BaseURL + "/" + strings.TrimPrefix(ref, "/")
}
