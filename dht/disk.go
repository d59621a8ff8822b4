// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dht

import "encoding/binary"

// diskEntrySize is the fixed byte length of one on-disk layout blob:
// four big-endian u32 words, [commit_hash, type, start, stop].
const diskEntrySize = 16

func encodeDiskEntry(commitHash, hashType, start, stop uint32) []byte {
	buf := make([]byte, diskEntrySize)
	binary.BigEndian.PutUint32(buf[0:4], commitHash)
	binary.BigEndian.PutUint32(buf[4:8], hashType)
	binary.BigEndian.PutUint32(buf[8:12], start)
	binary.BigEndian.PutUint32(buf[12:16], stop)
	return buf
}

func decodeDiskEntry(raw []byte) (commitHash uint32, hashType HashType, start, stop uint32, err error) {
	if len(raw) != diskEntrySize {
		return 0, 0, 0, 0, ErrInvalidDiskLayout
	}
	commitHash = binary.BigEndian.Uint32(raw[0:4])
	t := binary.BigEndian.Uint32(raw[4:8])
	start = binary.BigEndian.Uint32(raw[8:12])
	stop = binary.BigEndian.Uint32(raw[12:16])

	switch HashType(t) {
	case HashTypeDM, HashTypeDMUser:
		hashType = HashType(t)
	default:
		return 0, 0, 0, 0, ErrInvalidDiskLayout
	}
	return commitHash, hashType, start, stop, nil
}
