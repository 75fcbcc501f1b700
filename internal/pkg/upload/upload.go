package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var (
	ErrExtensionNotAllowed = errors.New("file type is not allowed")
	ErrTooLarge            = errors.New("file is too large")
	ErrInvalidName         = errors.New("invalid file name")
)

var DefaultExtensions = []string{".png", ".jpg", ".jpeg", ".webp", ".gif", ".pdf"}

const maxNameAttempts = 16

// DiskStore saves uploads under dir as "<unix-nanos><ext>".
type DiskStore struct {
	dir     string
	maxSize int64
	allowed map[string]struct{}
	now     func() time.Time
}

func NewDiskStore(dir string, maxSize int64, extensions []string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll -> %w", err)
	}

	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	return &DiskStore{
		dir:     dir,
		maxSize: maxSize,
		allowed: allowed,
		now:     time.Now,
	}, nil
}

func (s *DiskStore) Dir() string {
	return s.dir
}

// Save copies the uploaded file to disk and returns the stored file name.
func (s *DiskStore) Save(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if _, ok := s.allowed[ext]; !ok {
		return "", ErrExtensionNotAllowed
	}
	if s.maxSize > 0 && fh.Size > s.maxSize {
		return "", ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("fh.Open -> %w", err)
	}
	defer src.Close()

	dst, name, err := s.create(ext)
	if err != nil {
		return "", err
	}

	_, err = io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		return "", fmt.Errorf("io.Copy -> %w", err)
	}

	return name, nil
}

// Remove deletes a file previously returned by Save.
func (s *DiskStore) Remove(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return ErrInvalidName
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("os.Remove -> %w", err)
	}

	return nil
}

// create opens a new file exclusively, bumping the timestamp on collision.
func (s *DiskStore) create(ext string) (*os.File, string, error) {
	stamp := s.now().UnixNano()
	for i := 0; i < maxNameAttempts; i++ {
		name := strconv.FormatInt(stamp+int64(i), 10) + ext
		f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, name, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", fmt.Errorf("os.OpenFile -> %w", err)
		}
	}

	return nil, "", fmt.Errorf("no free file name after %d attempts", maxNameAttempts)
}
