package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// BannerStore holds event banner images. The local implementation
// serves demo and development setups; a cloud bucket can replace it
// behind the same interface.
type BannerStore interface {
	// URL is the public URL the banner will be served from once saved.
	// Keys are deterministic, so the URL is known before any write.
	URL(eventID int32, ext string) string
	Save(eventID int32, ext string, reader io.Reader) error
	Open(key string) (io.ReadCloser, error)
	Delete(eventID int32) error
}

// LocalBannerStore keeps banners on the local filesystem, one file per
// event, served back through the API's download route.
type LocalBannerStore struct {
	baseURL    string
	bannersDir string
}

func NewLocalBannerStore(baseURL, uploadsDir string) (*LocalBannerStore, error) {
	bannersDir := filepath.Join(uploadsDir, "banners")
	if err := os.MkdirAll(bannersDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create banners directory: %w", err)
	}
	return &LocalBannerStore{
		baseURL:    baseURL,
		bannersDir: bannersDir,
	}, nil
}

func (s *LocalBannerStore) key(eventID int32, ext string) string {
	return fmt.Sprintf("event-%d%s", eventID, ext)
}

func (s *LocalBannerStore) URL(eventID int32, ext string) string {
	return fmt.Sprintf("%s/api/v1/banners/%s", s.baseURL, s.key(eventID, ext))
}

// Save writes the banner file the URL for this event points at.
func (s *LocalBannerStore) Save(eventID int32, ext string, reader io.Reader) error {
	key := s.key(eventID, ext)

	// One banner per event; drop any previous file with another extension.
	if err := s.Delete(eventID); err != nil {
		return err
	}

	file, err := os.Create(filepath.Join(s.bannersDir, key))
	if err != nil {
		return fmt.Errorf("failed to create banner file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write banner file: %w", err)
	}

	return nil
}

func (s *LocalBannerStore) Open(key string) (io.ReadCloser, error) {
	// The key comes straight from the URL path; keep it inside the dir.
	if filepath.Base(key) != key {
		return nil, fmt.Errorf("invalid banner key")
	}
	file, err := os.Open(filepath.Join(s.bannersDir, key))
	if err != nil {
		return nil, fmt.Errorf("failed to open banner file: %w", err)
	}
	return file, nil
}

func (s *LocalBannerStore) Delete(eventID int32) error {
	matches, err := filepath.Glob(filepath.Join(s.bannersDir, fmt.Sprintf("event-%d.*", eventID)))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete banner file: %w", err)
		}
	}
	return nil
}
