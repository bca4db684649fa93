// Copyright 2024 The powchain Authors
// This file is part of the powchain library.
//
// The powchain library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The powchain library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the powchain library. If not, see <http://www.gnu.org/licenses/>.

package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBytesToHashPadsShortInput(t *testing.T) {
	h := BytesToHash([]byte{0x01, 0x02})
	require.Equal(t, byte(0x01), h[HashLength-2])
	require.Equal(t, byte(0x02), h[HashLength-1])
	for i := 0; i < HashLength-2; i++ {
		require.Equal(t, byte(0), h[i])
	}
}

func TestBytesToHashTruncatesLongInput(t *testing.T) {
	b := make([]byte, HashLength+4)
	b[len(b)-1] = 0xAB
	h := BytesToHash(b)
	require.Equal(t, byte(0xAB), h[HashLength-1])
}

func TestHashLessOrEqual(t *testing.T) {
	low := BytesToHash([]byte{0x01})
	high := BytesToHash([]byte{0x02})
	require.True(t, low.LessOrEqual(high))
	require.True(t, low.LessOrEqual(low))
	require.False(t, high.LessOrEqual(low))
}

func TestHashIsZero(t *testing.T) {
	require.True(t, Hash{}.IsZero())
	require.False(t, BytesToHash([]byte{0x01}).IsZero())
}
