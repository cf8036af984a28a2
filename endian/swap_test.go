package endian

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSwapWords(t *testing.T) {
	t.Run("word size 1 is a no-op", func(t *testing.T) {
		buf := []byte{1, 2, 3}
		SwapWords(buf, 1)
		require.Equal(t, []byte{1, 2, 3}, buf)
	})

	t.Run("word size 2", func(t *testing.T) {
		buf := []byte{0x01, 0x02, 0x03, 0x04}
		SwapWords(buf, 2)
		require.Equal(t, []byte{0x02, 0x01, 0x04, 0x03}, buf)
	})

	t.Run("word size 4", func(t *testing.T) {
		buf := []byte{0x01, 0x02, 0x03, 0x04}
		SwapWords(buf, 4)
		require.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, buf)
	})

	t.Run("word size 8", func(t *testing.T) {
		buf := []byte{1, 2, 3, 4, 5, 6, 7, 8}
		SwapWords(buf, 8)
		require.Equal(t, []byte{8, 7, 6, 5, 4, 3, 2, 1}, buf)
	})

	t.Run("round trip is identity", func(t *testing.T) {
		original := []byte{1, 2, 3, 4, 5, 6, 7, 8}
		buf := append([]byte(nil), original...)
		SwapWords(buf, 4)
		SwapWords(buf, 4)
		require.Equal(t, original, buf)
	})
}
