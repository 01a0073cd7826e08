package upload

import (
	"bytes"
	"testing"

	"formbuilder/backend/internal"

	"github.com/stretchr/testify/require"
)

func pngBytes() []byte {
	return []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00}
}

func jpegBytes() []byte {
	return []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}
}

func TestValidateStream_ImageFormats(t *testing.T) {
	t.Parallel()

	type testCase struct {
		name        string
		data        []byte
		contentType string
		expectedErr error
	}

	cases := []testCase{
		{name: "png accepted", data: pngBytes(), contentType: "image/png"},
		{name: "jpeg accepted", data: jpegBytes(), contentType: "image/jpeg"},
		{name: "gif accepted", data: []byte("GIF89a....."), contentType: "image/gif"},
		{name: "bmp accepted", data: []byte("BM......"), contentType: "image/bmp"},
		{
			name:        "webp accepted",
			data:        append([]byte("RIFF"), append([]byte{0, 0, 0, 0}, []byte("WEBP")...)...),
			contentType: "image/webp",
		},
		{
			name:        "svg content type rejected",
			data:        []byte("<svg></svg>"),
			contentType: "image/svg+xml",
			expectedErr: internal.ErrInvalidFileType,
		},
		{
			name:        "declared png with jpeg bytes still image",
			data:        jpegBytes(),
			contentType: "image/png",
		},
		{
			name:        "declared image with text payload rejected",
			data:        []byte("just plain text"),
			contentType: "image/png",
			expectedErr: internal.ErrInvalidFileType,
		},
	}

	v := NewValidator()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := v.ValidateStream(bytes.NewReader(tc.data), tc.contentType, WithMaxSize(MaxImageSize), WithImageFormats())
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateStream_SizeLimit(t *testing.T) {
	t.Parallel()

	v := NewValidator()

	oversized := append(pngBytes(), make([]byte, 64)...)
	_, err := v.ValidateStream(bytes.NewReader(oversized), "image/png", WithMaxSize(16), WithImageFormats())
	require.ErrorIs(t, err, internal.ErrFileTooLarge)

	_, err = v.ValidateStream(bytes.NewReader(pngBytes()), "image/png", WithMaxSize(1024), WithImageFormats())
	require.NoError(t, err)
}

func TestValidateStream_DocumentFormats(t *testing.T) {
	t.Parallel()

	v := NewValidator()

	accepted := []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"text/plain",
	}
	for _, contentType := range accepted {
		_, err := v.ValidateStream(bytes.NewReader([]byte("content")), contentType, WithMaxSize(MaxDocumentSize), WithDocumentFormats())
		require.NoError(t, err, contentType)
	}

	_, err := v.ValidateStream(bytes.NewReader([]byte("#!/bin/sh")), "application/x-sh", WithMaxSize(MaxDocumentSize), WithDocumentFormats())
	require.ErrorIs(t, err, internal.ErrInvalidFileType)
}

func TestValidateStream_ReturnsData(t *testing.T) {
	t.Parallel()

	v := NewValidator()

	data, err := v.ValidateStream(bytes.NewReader(pngBytes()), "image/png", WithImageFormats())
	require.NoError(t, err)
	require.Equal(t, pngBytes(), data)
}
