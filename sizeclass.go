// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iobuf

// classIndex returns the index of the smallest power-of-two size class
// >= size, given the pool's minimum class size. Callers must have
// already routed size > LargeThreshold requests to the standalone path;
// classIndex does not itself enforce the threshold.
func classIndex(size, minClassSize int) int {
	if size <= minClassSize {
		return 0
	}
	classSize := minClassSize
	idx := 0
	for classSize < size && idx < SizeClassCount-1 {
		classSize <<= 1
		idx++
	}
	return idx
}

// classSizeForIndex returns the page size a given class index holds.
func classSizeForIndex(idx, minClassSize int) int {
	return minClassSize << idx
}
