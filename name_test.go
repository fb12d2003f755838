package bundle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hand_near_face-1.0.0.tar.gz", ArchiveName("hand_near_face", Version{1, 0, 0}))
	assert.Equal(t, "my-engine-10.2.0.tar.gz", ArchiveName("my-engine", Version{10, 2, 0}))
}

func TestParseArchiveName(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		for _, tc := range []struct {
			name    string
			id      string
			version Version
		}{
			{"hand_near_face-1.0.0.tar.gz", "hand_near_face", Version{1, 0, 0}},
			{"my-engine-10.2.0.tar.gz", "my-engine", Version{10, 2, 0}},
			{"a-0.0.1.tar.gz", "a", Version{0, 0, 1}},
		} {
			id, v, err := ParseArchiveName(tc.name)
			require.NoError(t, err, tc.name)
			assert.Equal(t, tc.id, id)
			assert.Equal(t, tc.version, v)
			assert.Equal(t, tc.name, ArchiveName(id, v))
		}
	})

	t.Run("rejects malformed names", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{
			"",
			"engine-1.0.0.zip",
			"engine-1.0.0",
			"engine.tar.gz",
			"-1.0.0.tar.gz",
			"engine-1.0.tar.gz",
			"engine-v1.0.0.tar.gz",
		} {
			_, _, err := ParseArchiveName(name)
			assert.Error(t, err, name)
		}
	})
}
