package cargo

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Home resolves the cargo home directory: $CARGO_HOME when set,
// otherwise ~/.cargo. The directory is not required to exist.
func Home() (string, error) {
	if home := os.Getenv("CARGO_HOME"); home != "" {
		return home, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(userHome, ".cargo"), nil
}

// Cache describes the sizes of cargo's shared download caches, broken
// down the way cargo lays them out on disk.
type Cache struct {
	// RegistryIndex is registry/index: the crates.io index clone.
	RegistryIndex int64 `json:"registryIndex"`

	// RegistryCache is registry/cache: downloaded .crate archives.
	RegistryCache int64 `json:"registryCache"`

	// RegistrySrc is registry/src: unpacked crate sources.
	RegistrySrc int64 `json:"registrySrc"`

	// GitDB is git/db: bare clones of git dependencies.
	GitDB int64 `json:"gitDb"`

	// GitCheckouts is git/checkouts: working copies of git dependencies.
	GitCheckouts int64 `json:"gitCheckouts"`
}

// Registry returns the combined registry cache size.
func (c *Cache) Registry() int64 {
	return c.RegistryIndex + c.RegistryCache + c.RegistrySrc
}

// Git returns the combined git cache size.
func (c *Cache) Git() int64 {
	return c.GitDB + c.GitCheckouts
}

// Total returns the combined size of all shared caches.
func (c *Cache) Total() int64 {
	return c.Registry() + c.Git()
}

// InspectCache sizes the shared caches under the cargo home. Missing
// directories count as zero, so a machine without cargo installed
// reports an all-zero Cache rather than an error.
func InspectCache(ctx context.Context) (*Cache, error) {
	home, err := Home()
	if err != nil {
		return nil, err
	}

	cache := &Cache{}
	parts := []struct {
		rel  []string
		dest *int64
	}{
		{[]string{"registry", "index"}, &cache.RegistryIndex},
		{[]string{"registry", "cache"}, &cache.RegistryCache},
		{[]string{"registry", "src"}, &cache.RegistrySrc},
		{[]string{"git", "db"}, &cache.GitDB},
		{[]string{"git", "checkouts"}, &cache.GitCheckouts},
	}

	for _, part := range parts {
		size, err := DirSize(ctx, filepath.Join(home, filepath.Join(part.rel...)))
		if err != nil {
			return nil, err
		}
		*part.dest = size
	}

	return cache, nil
}

// DirSize walks a directory tree and sums the regular-file sizes.
// A nonexistent path is size zero. Unreadable subtrees are skipped
// rather than failing the walk; the only error returned is context
// cancellation.
func DirSize(ctx context.Context, path string) (int64, error) {
	var total int64

	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			// Permission errors and races with concurrent deletion are
			// expected when sizing caches; skip and keep walking.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return nil
			}
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		// The callback swallows filesystem errors, so the only error
		// that escapes the walk is context cancellation.
		return 0, err
	}

	return total, nil
}
