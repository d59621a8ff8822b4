// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iobuf_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/distfs"
)

func TestIobrefAddAndSize(t *testing.T) {
	p := iobuf.NewPool(iobuf.DefaultConfig())
	a, err := p.Get2(4096)
	require.NoError(t, err)
	b, err := p.Get2(4096)
	require.NoError(t, err)

	ref := iobuf.NewIobref()
	require.NoError(t, ref.Add(a))
	require.NoError(t, ref.Add(b))
	require.Equal(t, 8192, ref.Size())

	p.Unref(a)
	p.Unref(b)
	ref.Unref(p)
}

func TestIobrefMergeDedup(t *testing.T) {
	p := iobuf.NewPool(iobuf.DefaultConfig())
	a, err := p.Get2(4096)
	require.NoError(t, err)

	from := iobuf.NewIobref()
	require.NoError(t, from.Add(a))

	to := iobuf.NewIobref()
	require.NoError(t, to.Merge(from))
	require.NoError(t, to.Merge(from)) // merging twice must not duplicate
	require.Equal(t, 4096, to.Size())

	p.Unref(a)
	from.Unref(p)
	to.Unref(p)
}

func TestIobrefClearKeepsIobrefUsable(t *testing.T) {
	p := iobuf.NewPool(iobuf.DefaultConfig())
	a, err := p.Get2(4096)
	require.NoError(t, err)

	ref := iobuf.NewIobref()
	require.NoError(t, ref.Add(a))
	p.Unref(a)

	ref.Clear(p)
	require.Equal(t, 0, ref.Size())

	b, err := p.Get2(4096)
	require.NoError(t, err)
	require.NoError(t, ref.Add(b))
	p.Unref(b)

	ref.Unref(p)
}
