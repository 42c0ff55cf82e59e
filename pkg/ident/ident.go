// Package ident produces collision-resistant note identifiers.
//
// An identifier looks like "note_1714557600000_k3j5x2m9q0c4v8bd0fs1h7tp2gar":
// a prefix, the creation time in unix milliseconds and a random (version 4)
// UUID written in lowercase base32. Uniqueness is not proven; callers that
// care resolve collisions themselves.
package ident

import (
	"crypto/rand"
	"encoding/base32"
	"io"
	mrand "math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultPrefix is used when a Generator has no prefix.
const DefaultPrefix = "note"

var encoding = base32.NewEncoding("0123456789abcdefghijklmnopqrstuv").WithPadding(base32.NoPadding)

// Generator creates identifiers. The zero value is ready to use.
type Generator struct {
	// Prefix defaults to DefaultPrefix.
	Prefix string
	// Now defaults to time.Now.
	Now func() time.Time
	// Entropy defaults to crypto/rand.Reader. When it fails the generator
	// falls back to math/rand.
	Entropy io.Reader
}

// New returns a Generator with the given prefix.
func New(prefix string) *Generator {
	return &Generator{Prefix: prefix}
}

// NewID returns a fresh identifier.
func (g *Generator) NewID() string {
	prefix := g.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteByte('_')
	b.WriteString(strconv.FormatInt(now().UnixMilli(), 10))
	b.WriteByte('_')
	b.WriteString(encoding.EncodeToString(g.suffix()))
	return b.String()
}

func (g *Generator) suffix() []byte {
	src := g.Entropy
	if src == nil {
		src = rand.Reader
	}
	u, err := uuid.NewRandomFromReader(src)
	if err != nil {
		for i := range u {
			u[i] = byte(mrand.UintN(256))
		}
		u[6] = u[6]&0x0f | 0x40
		u[8] = u[8]&0x3f | 0x80
	}
	return u[:]
}

// Timestamp extracts the creation time encoded in id.
// It returns false for identifiers that were not produced by a Generator.
func Timestamp(id string) (time.Time, bool) {
	parts := strings.Split(id, "_")
	if len(parts) < 3 {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(parts[len(parts)-2], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}
