package upload

import (
	"bytes"
	"fmt"
	"path/filepath"

	storage "github.com/supabase-community/storage-go"
)

// Storage wraps the Supabase storage bucket used for submission media.
type Storage struct {
	client *storage.Client
	bucket string
}

func NewStorage(url, key, bucket string) *Storage {
	return &Storage{
		client: storage.NewClient(url+"/storage/v1", key, nil),
		bucket: bucket,
	}
}

// Upload stores the object under <folder>/<id><ext> and returns the object
// path and its public URL.
func (s *Storage) Upload(data []byte, id, folder, filename, contentType string) (string, string, error) {
	objectPath := id + filepath.Ext(filename)
	if folder != "" {
		objectPath = fmt.Sprintf("%s/%s", folder, objectPath)
	}

	upsert := true
	options := storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}

	if _, err := s.client.UploadFile(s.bucket, objectPath, bytes.NewReader(data), options); err != nil {
		return "", "", err
	}

	publicURL := s.client.GetPublicUrl(s.bucket, objectPath)
	return objectPath, publicURL.SignedURL, nil
}
