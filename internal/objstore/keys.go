package objstore

import (
	"strings"

	"github.com/google/uuid"
)

// uuidLen is the canonical textual UUID length used as the random prefix of
// every storage key this service generates.
const uuidLen = 36

// NewKey generates a storage key for an uploaded file: a random UUID prefix
// followed by the original filename. The prefix is what ExtractKey later
// validates, so generation and validation must stay in sync.
func NewKey(filename string) string {
	return uuid.NewString() + "-" + filename
}

// ExtractKey derives the storage key from a stored file URL and validates
// that it matches the generation pattern above. Stored values feed into
// presigned URL requests after an RLS bypass has already run, so a corrupted
// or crafted value must not become an arbitrary-object-access primitive.
// Returns ("", false) - "no access" - for anything that does not look like a
// key this service generated: empty input, path traversal, or a missing or
// malformed UUID prefix. Callers degrade gracefully by omitting the link.
func ExtractKey(fileURL string) (string, bool) {
	if fileURL == "" {
		return "", false
	}
	if strings.Contains(fileURL, "..") {
		return "", false
	}

	key := fileURL
	if idx := strings.LastIndex(fileURL, "/"); idx >= 0 {
		key = fileURL[idx+1:]
	}

	if len(key) < uuidLen+2 {
		// Too short for "<uuid>-<at least one character>".
		return "", false
	}
	prefix, rest := key[:uuidLen], key[uuidLen:]
	if _, err := uuid.Parse(prefix); err != nil {
		return "", false
	}
	if !strings.HasPrefix(rest, "-") {
		return "", false
	}
	return key, true
}
