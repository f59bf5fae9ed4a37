package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-kind collisions (prefix by kind).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ChapterUUID identifies a chapter across runs. The source path is the
// stable key; draft chapters have none and fall back to their name.
func ChapterUUID(path, name string) uuid.UUID {
	if p := strings.TrimSpace(path); p != "" {
		return UUID("fix-cjk-spacing:chapter:" + p)
	}
	if n := strings.TrimSpace(name); n != "" {
		return UUID("fix-cjk-spacing:draft:" + n)
	}
	return uuid.Nil
}
