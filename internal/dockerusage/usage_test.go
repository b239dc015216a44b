package dockerusage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/volume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	t.Run("empty report", func(t *testing.T) {
		u := summarize(types.DiskUsage{})

		assert.Equal(t, Usage{}, u)
		assert.Zero(t, u.Total())
		assert.Zero(t, u.TotalReclaimable())
	})

	t.Run("full report", func(t *testing.T) {
		du := types.DiskUsage{
			LayersSize: 1000,
			Images: []*image.Summary{
				// In use: pins its unique 400 bytes (600 total, 200 shared).
				{ID: "sha256:aaa", Size: 600, SharedSize: 200, Containers: 1},
				// Unused, fully reclaimable.
				{ID: "sha256:bbb", Size: 400, SharedSize: 0, Containers: 0},
			},
			Containers: []*container.Summary{
				{ID: "c1", State: "running", SizeRw: 50},
				{ID: "c2", State: "exited", SizeRw: 30},
			},
			Volumes: []*volume.Volume{
				{Name: "data", UsageData: &volume.UsageData{Size: 500, RefCount: 2}},
				{Name: "scratch", UsageData: &volume.UsageData{Size: 200, RefCount: 0}},
				// The daemon could not size this one.
				{Name: "unknown"},
			},
			BuildCache: []*build.CacheRecord{
				{ID: "bc1", Size: 100, InUse: true},
				{ID: "bc2", Size: 60, InUse: false},
				{ID: "bc3", Size: 40, Shared: true},
			},
		}

		u := summarize(du)

		assert.Equal(t, int64(1000), u.LayersSize)

		assert.Equal(t, Section{Count: 2, Size: 1000, Reclaimable: 600}, u.Images)
		assert.Equal(t, Section{Count: 2, Size: 80, Reclaimable: 30}, u.Containers)
		assert.Equal(t, Section{Count: 3, Size: 700, Reclaimable: 200}, u.Volumes)
		assert.Equal(t, Section{Count: 3, Size: 160, Reclaimable: 60}, u.BuildCache)

		assert.Equal(t, int64(1000+80+700+160), u.Total())
		assert.Equal(t, int64(600+30+200+60), u.TotalReclaimable())
	})

	t.Run("clamps not-computed sentinels", func(t *testing.T) {
		du := types.DiskUsage{
			LayersSize: -1,
			Containers: []*container.Summary{
				{ID: "c1", State: "exited", SizeRw: -1},
			},
			Volumes: []*volume.Volume{
				{Name: "v", UsageData: &volume.UsageData{Size: -1, RefCount: 0}},
			},
		}

		u := summarize(du)

		assert.Zero(t, u.Images.Size)
		assert.Zero(t, u.Containers.Size)
		assert.Zero(t, u.Volumes.Size)
		assert.Zero(t, u.Total())
	})

	t.Run("pinned layers are not reclaimable", func(t *testing.T) {
		du := types.DiskUsage{
			LayersSize: 500,
			Images: []*image.Summary{
				{ID: "sha256:aaa", Size: 500, SharedSize: 0, Containers: 2},
			},
		}

		u := summarize(du)

		assert.Equal(t, int64(500), u.Images.Size)
		assert.Zero(t, u.Images.Reclaimable)
	})
}

func TestDetectUnixSocket(t *testing.T) {
	t.Run("returns the first existing path", func(t *testing.T) {
		dir := t.TempDir()
		sock := filepath.Join(dir, "docker.sock")
		require.NoError(t, os.WriteFile(sock, nil, 0o600))

		host, err := detectUnixSocket([]string{
			filepath.Join(dir, "missing.sock"),
			sock,
		})

		require.NoError(t, err)
		assert.Equal(t, "unix://"+sock, host)
	})

	t.Run("errors when nothing exists", func(t *testing.T) {
		_, err := detectUnixSocket([]string{filepath.Join(t.TempDir(), "missing.sock")})

		assert.Error(t, err)
	})
}
