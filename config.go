// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iobuf

import env "github.com/xyproto/env/v2"

// Alignment granule and size-class limits, see spec §6 Constants.
const (
	// DefaultAlign is the default alignment granule used by
	// GetPageAligned when the caller passes align <= 0.
	DefaultAlign = 512

	// LargeThreshold is the page size above which a request bypasses
	// size-classed arenas entirely and is allocated standalone.
	LargeThreshold = 131072

	// SizeClassCount is the number of size-class slots the pool keeps,
	// mirroring GF_VARIABLE_IOBUF_COUNT in the original allocator.
	SizeClassCount = 32

	// MinClassSize is the smallest size class the pool will create.
	MinClassSize = 128

	// DefaultArenaSize is the default byte size of a freshly mmap'd
	// arena before rounding to hold a whole number of pages.
	DefaultArenaSize = 8 << 20 // 8 MiB
)

// Config configures a Pool's default arena size and page size.
type Config struct {
	// ArenaSize is the nominal byte size of a new arena; it is rounded
	// up so that it holds a whole number of pages for the class it
	// backs.
	ArenaSize int

	// DefaultPageSize is used by Get (as opposed to Get2) when no
	// explicit page size is given.
	DefaultPageSize int

	// LargeThreshold overrides the package default large-object
	// threshold (bytes); requests above it are never pooled.
	LargeThreshold int

	// MinClassSize overrides the smallest size class the pool creates.
	MinClassSize int

	// Align is the default alignment granule for GetPageAligned.
	Align int
}

// DefaultConfig returns a Config using the package's built-in defaults.
// DefaultPageSize is taken from the package-level PageSize variable, so
// a prior call to SetPageSize is reflected here.
func DefaultConfig() Config {
	return Config{
		ArenaSize:       DefaultArenaSize,
		DefaultPageSize: int(PageSize),
		LargeThreshold:  LargeThreshold,
		MinClassSize:    MinClassSize,
		Align:           DefaultAlign,
	}
}

// ConfigFromEnv returns DefaultConfig with any of DISTFS_IOBUF_ARENA_SIZE,
// DISTFS_IOBUF_PAGE_SIZE, and DISTFS_IOBUF_ALIGN overridden from the
// process environment, for hosts that want to tune the pool without a
// code change.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.ArenaSize = env.Int("DISTFS_IOBUF_ARENA_SIZE", cfg.ArenaSize)
	cfg.DefaultPageSize = env.Int("DISTFS_IOBUF_PAGE_SIZE", cfg.DefaultPageSize)
	cfg.Align = env.Int("DISTFS_IOBUF_ALIGN", cfg.Align)
	return cfg
}

func (c Config) normalize() Config {
	if c.ArenaSize <= 0 {
		c.ArenaSize = DefaultArenaSize
	}
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = int(PageSize)
	}
	if c.LargeThreshold <= 0 {
		c.LargeThreshold = LargeThreshold
	}
	if c.MinClassSize <= 0 {
		c.MinClassSize = MinClassSize
	}
	if c.Align <= 0 {
		c.Align = DefaultAlign
	}
	return c
}
