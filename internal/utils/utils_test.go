package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResizeBytes(t *testing.T) {
	t.Run("bytes are zero extended at the end", func(t *testing.T) {
		// Prepare
		a := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

		// Execute
		b := ResizeBytes(a, 20)

		// Check
		assert.Equal(t, 20, len(b), "slice has right length")
		for i, v := range b {
			if i < 10 {
				if v != a[i] {
					assert.Fail(t, "data correctly in beginning of slice")
				}
			} else {
				if v != 0 {
					assert.Fail(t, "zeros correctly appended")
				}
			}
		}
	})

	t.Run("bytes are truncated", func(t *testing.T) {
		// Prepare
		a := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

		// Execute
		b := ResizeBytes(a, 4)

		// Check
		assert.Equal(t, []byte{1, 2, 3, 4}, b, "first bytes kept")
	})

	t.Run("result does not share storage", func(t *testing.T) {
		// Prepare
		a := []byte{1, 2, 3}

		// Execute
		b := ResizeBytes(a, 3)
		b[0] = 9

		// Check
		assert.Equal(t, byte(1), a[0], "source untouched")
	})

	t.Run("resizes to zero length", func(t *testing.T) {
		// Execute
		b := ResizeBytes([]byte{1, 2}, 0)

		// Check
		assert.Empty(t, b, "empty result")
	})
}

func TestClone(t *testing.T) {
	t.Run("clones a byte slice", func(t *testing.T) {
		// Prepare
		a := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

		// Execute
		b := Clone(a)
		a[0] = 42

		// Check
		assert.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, b, "clone keeps original contents")
	})

	t.Run("nil stays nil", func(t *testing.T) {
		// Execute & Check
		assert.Nil(t, Clone(nil), "nil clone")
	})
}
