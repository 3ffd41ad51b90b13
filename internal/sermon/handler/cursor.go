package handler

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/pneumalabs/sermon-pages/internal/sermon/storage"
)

func DecodeSermonCursor(cursorStr string) (*storage.SermonCursor, error) {
	if cursorStr == "" {
		return nil, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(cursorStr)
	if err != nil {
		return nil, err
	}

	parts := strings.Split(string(decoded), "|")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid cursor format")
	}

	var createdAt int64
	_, err = fmt.Sscanf(parts[0], "%d", &createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid createdAt in cursor: %w", err)
	}

	if parts[1] == "" {
		return nil, fmt.Errorf("missing sermon id in cursor")
	}

	return &storage.SermonCursor{
		CreatedAt: time.Unix(0, createdAt),
		SermonID:  parts[1],
	}, nil
}

func EncodeSermonCursor(cursor *storage.SermonCursor) (string, error) {
	if cursor == nil {
		return "", nil
	}

	raw := fmt.Sprintf("%d|%s", cursor.CreatedAt.UnixNano(), cursor.SermonID)
	return base64.StdEncoding.EncodeToString([]byte(raw)), nil
}
