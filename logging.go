// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iobuf

import "go.uber.org/zap"

var log = zap.NewNop().Sugar()

// SetLogger installs the logger used for the pool's debug message on
// each new arena allocation. Passing nil restores the no-op logger. Safe to call once
// at startup; not safe for concurrent use with in-flight Get/Unref
// calls that might log.
func SetLogger(l *zap.SugaredLogger) {
	if l == nil {
		log = zap.NewNop().Sugar()
		return
	}
	log = l
}
