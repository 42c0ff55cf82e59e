package local_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/jotter/pkg/adapters/kv"
	"github.com/aretw0/jotter/pkg/adapters/local"
	"github.com/aretw0/jotter/pkg/core"
	"github.com/aretw0/jotter/pkg/ident"
)

func seeded(b *testing.B, backend kv.Backend, n int) *local.Repository {
	b.Helper()
	repo := local.NewRepository(local.Config{Store: kv.New("bench", backend), IDs: ident.New("note")})
	ctx := context.Background()
	for i := 0; i < n; i++ {
		_, err := repo.Create(ctx, core.Draft{
			Title:   fmt.Sprintf("Note %d", i),
			Content: fmt.Sprintf("Content payload %d", i),
		})
		require.NoError(b, err)
	}
	return repo
}

// BenchmarkList_1k measures listing 1,000 notes, each List decoding the root.
// Run with: go test -bench=List_1k -benchmem -run=^$ ./pkg/adapters/local/...
func BenchmarkList_1k(b *testing.B) {
	for _, tc := range []struct {
		name    string
		backend func(b *testing.B) kv.Backend
	}{
		{"memory", func(*testing.B) kv.Backend { return nil }},
		{"file", func(b *testing.B) kv.Backend { return kv.NewFileBackend(b.TempDir(), nil) }},
	} {
		b.Run(tc.name, func(b *testing.B) {
			repo := seeded(b, tc.backend(b), 1000)
			ctx := context.Background()
			b.ResetTimer()

			for n := 0; n < b.N; n++ {
				notes, err := repo.List(ctx)
				if err != nil {
					b.Fatal(err)
				}
				if len(notes) != 1000 {
					b.Fatalf("expected 1000 notes, got %d", len(notes))
				}
			}
		})
	}
}

// BenchmarkUpdate_1k measures one read-modify-write cycle against a root of 1,000 notes.
func BenchmarkUpdate_1k(b *testing.B) {
	repo := seeded(b, nil, 1000)
	ctx := context.Background()
	notes, err := repo.List(ctx)
	require.NoError(b, err)
	id := notes[0].ID
	b.ResetTimer()

	for n := 0; n < b.N; n++ {
		if _, err := repo.Update(ctx, id, core.Patch{}.SetContent(fmt.Sprint(n))); err != nil {
			b.Fatal(err)
		}
	}
}
