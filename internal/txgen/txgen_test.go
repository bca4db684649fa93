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

package txgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGeneratorProducesValidSignedTransactions(t *testing.T) {
	g, handle, out := New()

	go g.Run()
	handle.Start(0)

	select {
	case st := <-out:
		require.True(t, st.VerifySignature())
		require.EqualValues(t, 0, st.Transaction.Value.Uint64())
		require.EqualValues(t, 0, st.Transaction.Nonce.Uint64())
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a generated transaction")
	}
	handle.Exit()
}

func TestGeneratorStaysPausedUntilStart(t *testing.T) {
	g, handle, out := New()
	go g.Run()

	select {
	case <-out:
		t.Fatal("generator produced a transaction while paused")
	case <-time.After(200 * time.Millisecond):
	}
	handle.Exit()
}
