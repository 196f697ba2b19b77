package client

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemoryStore() },
		"file":   func(t *testing.T) Store { return NewFileStore(filepath.Join(t.TempDir(), "session.yml")) },
	}
	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)

			sess := NewSession(store)
			require.NoError(t, sess.Load())
			assert.False(t, sess.IsAuthenticated())

			require.NoError(t, sess.Init("tok3n", "Ada", "ada@school.test"))
			assert.True(t, sess.IsAuthenticated())

			restored := NewSession(store)
			require.NoError(t, restored.Load())
			assert.Equal(t, "tok3n", restored.Token())
			assert.Equal(t, "Ada", restored.UserName())
			assert.Equal(t, "ada@school.test", restored.UserEmail())

			require.NoError(t, restored.Clear())
			assert.False(t, restored.IsAuthenticated())

			// the first session still holds its copy until reloaded
			assert.True(t, sess.IsAuthenticated())
			require.NoError(t, sess.Load())
			assert.False(t, sess.IsAuthenticated())
			assert.Empty(t, sess.UserName())
		})
	}
}
