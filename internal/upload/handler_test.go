package upload

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"
)

func TestToResponse_CarriesPublicID(t *testing.T) {
	t.Parallel()

	f := File{
		ID:               uuid.New(),
		PublicID:         "formbuilder/profiles/abc123.png",
		URL:              "https://storage.example.com/formbuilder/profiles/abc123.png",
		OriginalFilename: "avatar.png",
		ContentType:      "image/png",
		Size:             42,
		Kind:             KindImage,
		CreatedAt:        pgtype.Timestamptz{Valid: true},
	}

	body, err := json.Marshal(ToResponse(f))
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Equal(t, "formbuilder/profiles/abc123.png", payload["public_id"])
	require.Equal(t, f.URL, payload["url"])
	require.Equal(t, float64(42), payload["size"])
}
