package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// SourceKind identifies what kind of content a fingerprint was derived from.
type SourceKind string

const (
	SourceAudio SourceKind = "audio"
	SourceText  SourceKind = "text"
)

// Key derives a deterministic idempotency key from raw content bytes.
// Format: "<kind>_sha256:<hex-digest>". Identical bytes always produce
// the same key, so repeated submissions of the same content are
// recognized as duplicates without reprocessing.
func Key(kind SourceKind, data []byte) string {
	digest := sha256.Sum256(data)
	return fmt.Sprintf("%s_sha256:%s", kind, hex.EncodeToString(digest[:]))
}

// FromAudio fingerprints raw audio file bytes.
func FromAudio(data []byte) string {
	return Key(SourceAudio, data)
}

// FromTranscript fingerprints transcript text. The text is trimmed
// before hashing so leading/trailing whitespace does not produce a
// distinct key for otherwise identical transcripts.
func FromTranscript(transcript string) string {
	return Key(SourceText, []byte(strings.TrimSpace(transcript)))
}
