// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dht

import "go.uber.org/zap"

var log = zap.NewNop().Sugar()

// SetLogger installs the logger used for search-miss and invalid-blob
// warnings. Passing nil restores the no-op logger.
func SetLogger(l *zap.SugaredLogger) {
	if l == nil {
		log = zap.NewNop().Sugar()
		return
	}
	log = l
}
