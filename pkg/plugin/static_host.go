package plugin

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/arthur-debert/githash/pkg/errors"
	"github.com/arthur-debert/githash/pkg/types"
)

// StaticHost is a minimal Host for programs that produce their assets
// in memory and want them written, stamped and cleaned up.
type StaticHost struct {
	out Output
	fs  types.FS

	mu          sync.Mutex
	assetsHooks []AssetsHook
	doneHooks   []DoneHook
}

// NewStaticHost creates a host writing to out.Path on fsys.
func NewStaticHost(out Output, fsys types.FS) *StaticHost {
	return &StaticHost{out: out, fs: fsys}
}

// Output implements Host.
func (h *StaticHost) Output() *Output { return &h.out }

// OnAssetsReady implements Host.
func (h *StaticHost) OnAssetsReady(hook AssetsHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.assetsHooks = append(h.assetsHooks, hook)
}

// OnDone implements Host.
func (h *StaticHost) OnDone(hook DoneHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.doneHooks = append(h.doneHooks, hook)
}

// Emit runs one build: every assets hook in registration order, each one
// awaited until it calls finalize, then the assets are written under the
// output path and the done hooks receive the build's stats.
func (h *StaticHost) Emit(ctx context.Context, assets types.Assets) (types.Stats, error) {
	start := time.Now()

	h.mu.Lock()
	assetsHooks := append([]AssetsHook{}, h.assetsHooks...)
	doneHooks := append([]DoneHook{}, h.doneHooks...)
	h.mu.Unlock()

	for _, hook := range assetsHooks {
		finalized := make(chan struct{})
		hook(ctx, assets, sync.OnceFunc(func() { close(finalized) }))

		select {
		case <-finalized:
		case <-ctx.Done():
			return types.Stats{}, ctx.Err()
		}
	}

	stats := types.Stats{}
	for _, name := range assets.Names() {
		content := assets[name]
		target := filepath.Join(h.out.Path, filepath.FromSlash(name))
		if err := h.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return stats, errors.Wrapf(err, errors.ErrFileWrite, "cannot create directory for %s", name)
		}
		if err := h.fs.WriteFile(target, content, 0644); err != nil {
			return stats, errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", name)
		}
		stats.Assets++
		stats.Bytes += int64(len(content))
	}
	stats.Duration = time.Since(start)

	for _, hook := range doneHooks {
		hook(stats)
	}
	return stats, nil
}
