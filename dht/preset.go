// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dht

import "sync"

// PresetRegistry holds one flat, full-range Layout per subvolume,
// created once at initialization and shared for the lifetime of the
// process. Preset layouts are immune to Ref/Unref.
type PresetRegistry struct {
	mu      sync.RWMutex
	presets map[string]*Layout
}

// NewPresetRegistry builds a PresetRegistry with one preset layout per
// subvol in subvols, each covering the full [0, 2^32) hash space.
func NewPresetRegistry(subvols []Subvolume) *PresetRegistry {
	r := &PresetRegistry{presets: make(map[string]*Layout, len(subvols))}
	for _, sv := range subvols {
		l := &Layout{
			hashType: HashTypeDM,
			preset:   true,
			entries: []Entry{{
				Subvol: sv,
				Start:  0,
				Stop:   0xFFFFFFFF,
			}},
		}
		r.presets[sv.Name()] = l
	}
	return r
}

// For returns the preset layout for subvol, or nil if none was
// registered for it.
func (r *PresetRegistry) For(subvol Subvolume) *Layout {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.presets[subvol.Name()]
}
