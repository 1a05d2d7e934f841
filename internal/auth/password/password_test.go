package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hashed, err := Hash("s3cret-pass")
	require.NoError(t, err)

	assert.True(t, Verify("s3cret-pass", hashed))
	assert.False(t, Verify("wrong-pass", hashed))
	assert.False(t, Verify("s3cret-pass", ""))
	assert.False(t, Verify("s3cret-pass", "not-a-hash"))
}
