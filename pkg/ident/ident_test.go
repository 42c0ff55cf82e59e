package ident_test

import (
	"encoding/base32"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/jotter/pkg/ident"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

var idPattern = regexp.MustCompile(`^note_1714557600000_[0-9a-v]{26}$`)

func fixedNow() time.Time { return time.UnixMilli(1714557600000) }

func TestGenerator_Format(t *testing.T) {
	g := &ident.Generator{Now: fixedNow}

	id := g.NewID()
	assert.Regexp(t, idPattern, id)

	ts, ok := ident.Timestamp(id)
	require.True(t, ok)
	assert.Equal(t, int64(1714557600000), ts.UnixMilli())
}

func TestGenerator_Prefix(t *testing.T) {
	g := ident.New("memo")
	assert.Regexp(t, `^memo_\d+_[0-9a-v]{26}$`, g.NewID())
}

func TestGenerator_FallbackEntropy(t *testing.T) {
	g := &ident.Generator{Now: fixedNow, Entropy: failingReader{}}

	a, b := g.NewID(), g.NewID()
	assert.Regexp(t, idPattern, a)
	assert.NotEqual(t, a, b, "fallback source should still vary")
}

func TestGenerator_Distinct(t *testing.T) {
	g := &ident.Generator{}
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := g.NewID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestTimestamp_Foreign(t *testing.T) {
	_, ok := ident.Timestamp("hello")
	assert.False(t, ok)

	_, ok = ident.Timestamp("a_b_c")
	assert.False(t, ok)
}

func TestGenerator_SuffixIsUUID(t *testing.T) {
	g := &ident.Generator{Now: fixedNow}
	id := g.NewID()

	raw, err := base32.NewEncoding("0123456789abcdefghijklmnopqrstuv").
		WithPadding(base32.NoPadding).
		DecodeString(id[strings.LastIndex(id, "_")+1:])
	require.NoError(t, err)
	u, err := uuid.FromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), u.Version())
	assert.Equal(t, uuid.RFC4122, u.Variant())
}
