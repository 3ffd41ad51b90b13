package handler

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pneumalabs/sermon-pages/internal/sermon/storage"
)

func TestSermonCursor_RoundTrip(t *testing.T) {
	original := &storage.SermonCursor{
		CreatedAt: time.Date(2025, 6, 1, 10, 30, 0, 123456789, time.UTC),
		SermonID:  "a5c9d1ce-8d0e-4b6f-9f3f-111122223333",
	}

	encoded, err := EncodeSermonCursor(original)
	require.NoError(t, err)
	require.NotEmpty(t, encoded)

	decoded, err := DecodeSermonCursor(encoded)
	require.NoError(t, err)

	assert.True(t, original.CreatedAt.Equal(decoded.CreatedAt))
	assert.Equal(t, original.SermonID, decoded.SermonID)
}

func TestDecodeSermonCursor(t *testing.T) {
	tests := []struct {
		name    string
		cursor  string
		wantErr bool
		wantNil bool
	}{
		{
			name:    "empty cursor is nil",
			cursor:  "",
			wantNil: true,
		},
		{
			name:    "not base64",
			cursor:  "!!!not-base64!!!",
			wantErr: true,
		},
		{
			name:    "missing separator",
			cursor:  base64.StdEncoding.EncodeToString([]byte("12345")),
			wantErr: true,
		},
		{
			name:    "non-numeric timestamp",
			cursor:  base64.StdEncoding.EncodeToString([]byte("abc|id-1")),
			wantErr: true,
		},
		{
			name:    "missing id",
			cursor:  base64.StdEncoding.EncodeToString([]byte("12345|")),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cursor, err := DecodeSermonCursor(tt.cursor)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, cursor)
			}
		})
	}
}
