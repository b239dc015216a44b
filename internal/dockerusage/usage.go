package dockerusage

import (
	"context"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/build"

	"github.com/rskill-dev/rskill/internal/model"
)

// Section summarizes one category of Docker disk consumers.
type Section struct {
	// Count is the number of objects in the category.
	Count int `json:"count"`

	// Size is the total bytes the category occupies on disk.
	Size int64 `json:"size"`

	// Reclaimable is the portion of Size that pruning could free.
	Reclaimable int64 `json:"reclaimable"`
}

// Usage is a condensed view of the daemon's disk-usage report, shaped
// like the summary `docker system df` prints.
type Usage struct {
	// LayersSize is the total bytes of unique image layers on disk.
	LayersSize int64 `json:"layersSize"`

	Images     Section `json:"images"`
	Containers Section `json:"containers"`
	Volumes    Section `json:"volumes"`
	BuildCache Section `json:"buildCache"`
}

// Total returns the combined on-disk size of all categories.
func (u Usage) Total() int64 {
	return u.Images.Size + u.Containers.Size + u.Volumes.Size + u.BuildCache.Size
}

// TotalReclaimable returns the combined bytes that pruning could free.
func (u Usage) TotalReclaimable() int64 {
	return u.Images.Reclaimable + u.Containers.Reclaimable +
		u.Volumes.Reclaimable + u.BuildCache.Reclaimable
}

// Usage queries the daemon's disk-usage endpoint and condenses the
// result. This is a single API call, but the daemon may take several
// seconds to size a large volume store.
func (c *Client) Usage(ctx context.Context) (Usage, error) {
	du, err := c.inner.DiskUsage(ctx, types.DiskUsageOptions{})
	if err != nil {
		return Usage{}, model.WrapCLIError(
			model.ExitDockerUnavailable,
			"failed to query Docker disk usage",
			err,
		)
	}
	return summarize(du), nil
}

// PruneBuildCache removes dangling build cache entries and reports the
// bytes reclaimed and the number of cache records deleted. When all is
// true, in-use entries are removed as well.
func (c *Client) PruneBuildCache(ctx context.Context, all bool) (int64, int, error) {
	report, err := c.inner.BuildCachePrune(ctx, build.CachePruneOptions{All: all})
	if err != nil {
		return 0, 0, model.WrapCLIError(
			model.ExitDockerUnavailable,
			"failed to prune Docker build cache",
			err,
		)
	}
	return int64(report.SpaceReclaimed), len(report.CachesDeleted), nil
}

// summarize folds the raw disk-usage response into per-category
// sections, following the same accounting `docker system df` uses.
func summarize(du types.DiskUsage) Usage {
	u := Usage{LayersSize: nonNegative(du.LayersSize)}

	// Image sizes overlap through shared layers, so the section total is
	// the unique layer bytes rather than a per-image sum. The layers an
	// image contributes beyond its shared ones are pinned while a
	// container uses it; everything else is reclaimable.
	u.Images.Count = len(du.Images)
	u.Images.Size = nonNegative(du.LayersSize)
	var pinned int64
	for _, img := range du.Images {
		if img.Containers > 0 {
			pinned += nonNegative(img.Size) - nonNegative(img.SharedSize)
		}
	}
	u.Images.Reclaimable = nonNegative(u.Images.Size - pinned)

	// Containers count their writable layer only; stopped ones are
	// reclaimable.
	for _, ctr := range du.Containers {
		u.Containers.Count++
		size := nonNegative(ctr.SizeRw)
		u.Containers.Size += size
		if ctr.State != "running" {
			u.Containers.Reclaimable += size
		}
	}

	// The daemon omits usage data for volumes it could not size.
	for _, vol := range du.Volumes {
		u.Volumes.Count++
		if vol.UsageData == nil {
			continue
		}
		size := nonNegative(vol.UsageData.Size)
		u.Volumes.Size += size
		if vol.UsageData.RefCount == 0 {
			u.Volumes.Reclaimable += size
		}
	}

	// Shared cache records would double-count bytes already attributed
	// to another record, so only non-shared ones are summed.
	for _, rec := range du.BuildCache {
		u.BuildCache.Count++
		if rec.Shared {
			continue
		}
		size := nonNegative(rec.Size)
		u.BuildCache.Size += size
		if !rec.InUse {
			u.BuildCache.Reclaimable += size
		}
	}

	return u
}

// nonNegative clamps the sentinel -1 the daemon uses for "not computed"
// to zero so it cannot skew totals.
func nonNegative(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
