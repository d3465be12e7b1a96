package fake

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUploader(t *testing.T) {
	u := New("")
	url, err := u.Upload(context.Background(), "a.webp", "image/webp", []byte("x"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "https://files.petcafe.local/pets/"))
	require.True(t, strings.HasSuffix(url, ".webp"))
	require.Equal(t, 1, u.Count())
}
