package upload

import (
	"bytes"
	"io"

	"formbuilder/backend/internal"
)

const (
	MaxImageSize    = 5 * 1024 * 1024
	MaxDocumentSize = 25 * 1024 * 1024
)

// ValidatorOption is a function that configures validation rules
type ValidatorOption func(*validatorConfig)

type validatorConfig struct {
	maxSize      int64
	allowedTypes []string
	checkFormat  func([]byte) error
}

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateStream reads the stream fully and checks it against the
// configured size, content type and format rules.
func (v *Validator) ValidateStream(stream io.Reader, contentType string, opts ...ValidatorOption) ([]byte, error) {
	config := &validatorConfig{}
	for _, opt := range opts {
		opt(config)
	}

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, err
	}

	if config.maxSize > 0 && int64(len(data)) > config.maxSize {
		return nil, internal.ErrFileTooLarge
	}

	if len(config.allowedTypes) > 0 {
		allowed := false
		for _, t := range config.allowedTypes {
			if t == contentType {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, internal.ErrInvalidFileType
		}
	}

	if config.checkFormat != nil {
		if err := config.checkFormat(data); err != nil {
			return nil, err
		}
	}

	return data, nil
}

// WithMaxSize sets the maximum allowed file size in bytes
func WithMaxSize(size int64) ValidatorOption {
	return func(c *validatorConfig) {
		c.maxSize = size
	}
}

// WithImageFormats accepts JPEG, PNG, WebP, GIF and BMP images, validating
// both the declared content type and the magic bytes.
func WithImageFormats() ValidatorOption {
	return func(c *validatorConfig) {
		c.allowedTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif", "image/bmp"}
		c.checkFormat = func(data []byte) error {
			if err := validateJPEG(data); err == nil {
				return nil
			}
			if err := validatePNG(data); err == nil {
				return nil
			}
			if err := validateWebP(data); err == nil {
				return nil
			}
			if err := validateGIF(data); err == nil {
				return nil
			}
			if err := validateBMP(data); err == nil {
				return nil
			}
			return internal.ErrInvalidFileType
		}
	}
}

// WithDocumentFormats accepts the document types submissions may attach.
// Office formats are container files, only the declared content type is
// checked.
func WithDocumentFormats() ValidatorOption {
	return func(c *validatorConfig) {
		c.allowedTypes = []string{
			"application/pdf",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/vnd.ms-excel",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			"text/plain",
		}
	}
}

func validateJPEG(data []byte) error {
	if len(data) < 3 || data[0] != 0xFF || data[1] != 0xD8 || data[2] != 0xFF {
		return internal.ErrInvalidFileType
	}
	return nil
}

func validatePNG(data []byte) error {
	signature := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	if !bytes.HasPrefix(data, signature) {
		return internal.ErrInvalidFileType
	}
	return nil
}

func validateWebP(data []byte) error {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		return internal.ErrInvalidFileType
	}
	return nil
}

func validateGIF(data []byte) error {
	if !bytes.HasPrefix(data, []byte("GIF87a")) && !bytes.HasPrefix(data, []byte("GIF89a")) {
		return internal.ErrInvalidFileType
	}
	return nil
}

func validateBMP(data []byte) error {
	if !bytes.HasPrefix(data, []byte("BM")) {
		return internal.ErrInvalidFileType
	}
	return nil
}
