package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Setenv("CHESTKEEPER_TEST_DIR", "/tmp/ck")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "/var/data/ck.db", "/var/data/ck.db"},
		{"tilde slash", "~/data/ck.db", filepath.Join(home, "data/ck.db")},
		{"bare tilde", "~", home},
		{"env var", "$CHESTKEEPER_TEST_DIR/ck.db", "/tmp/ck/ck.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestDataPathDefault(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".local/share/chestkeeper/chestkeeper.db"), DataPath(""))
	assert.Equal(t, "/srv/ck.db", DataPath("/srv/ck.db"))
}
