package sequence

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandomCodeLengthAndAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := RandomCode(8)
		require.NoError(t, err)
		require.Len(t, code, 8)
		require.Regexp(t, "^[A-HJ-NP-Z2-9]+$", code)
	}
}
