// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package iobuf_test

// raceEnabled is true when the race detector is active. The
// concurrency stress test trims its iteration count under race mode,
// where every memory access is instrumented.
const raceEnabled = true
