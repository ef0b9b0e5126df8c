package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func storedPaths(n int) []string {
	paths := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		paths = append(paths, fmt.Sprintf("tvh-1/tvh-1-%d.jpg", i))
	}
	return paths
}

func localUploads(m int) []Upload {
	files := make([]Upload, 0, m)
	for i := 0; i < m; i++ {
		files = append(files, jpeg(fmt.Sprintf("local-%d.jpg", i)))
	}
	return files
}

func sameSet(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	seen := make(map[string]bool, len(got))
	for _, g := range got {
		seen[g] = true
	}
	for _, w := range want {
		if !seen[w] {
			return false
		}
	}
	return true
}

// With N stored and M new photos a save leaves exactly 1..N+M behind.
func TestProperty_SaveNumbersWithoutGapsOrDuplicates(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("stored and new photos form 1..N+M", prop.ForAll(
		func(n, m int) bool {
			f := newFixture(newMemStore(storedPaths(n)...), newMemRecords())
			pid, _ := ParseProductID("1")
			s := NewSession("u", pid, f.deps)
			s.Hydrate(context.Background())

			if _, err := s.AddPhotos(localUploads(m)); err != nil {
				return false
			}
			out, err := s.Save(context.Background())
			if err != nil || out.State != Done || len(out.Uploaded) != m {
				return false
			}
			return sameSet(f.store.keys("tvh-1/"), storedPaths(n+m))
		},
		gen.IntRange(0, 12),
		gen.IntRange(1, 12),
	))

	properties.TestingRun(t)
}

// A save that fails part-way and is retried writes the same names a clean
// save would have written.
func TestProperty_RetryAfterFailedUploadReusesNames(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("retry is idempotent", prop.ForAll(
		func(n, m, failAt int) bool {
			failAt = failAt%m + 1
			broken := fmt.Sprintf("tvh-1/tvh-1-%d.jpg", n+failAt)

			store := newMemStore(storedPaths(n)...)
			store.putErrs[broken] = errors.New("connection refused")
			f := newFixture(store, newMemRecords())
			pid, _ := ParseProductID("1")
			s := NewSession("u", pid, f.deps)
			s.Hydrate(context.Background())

			if _, err := s.AddPhotos(localUploads(m)); err != nil {
				return false
			}
			if out, err := s.Save(context.Background()); err == nil || out.State != Failed {
				return false
			}
			if len(store.puts) != failAt-1 {
				return false
			}

			delete(store.putErrs, broken)
			if out, err := s.Save(context.Background()); err != nil || out.State != Done {
				return false
			}
			return sameSet(store.keys("tvh-1/"), storedPaths(n+m)) && len(store.puts) == m
		},
		gen.IntRange(0, 8),
		gen.IntRange(1, 8),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}
