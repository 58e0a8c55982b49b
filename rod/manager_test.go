//go:build integration

package rod_test

import (
	"testing"

	"github.com/fwojciec/mise/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserManager_Incognito(t *testing.T) {
	t.Parallel()

	t.Run("recycles the browser after max pages once idle", func(t *testing.T) {
		t.Parallel()

		manager, err := rod.NewBrowserManager(2)
		require.NoError(t, err)
		defer manager.Close()

		firstPID := manager.LauncherPID()
		for range 2 {
			_, release, err := manager.Incognito()
			require.NoError(t, err)
			release()
		}

		_, release, err := manager.Incognito()
		require.NoError(t, err)
		defer release()

		assert.NotEqual(t, firstPID, manager.LauncherPID())
	})

	t.Run("keeps the browser while a context is in flight", func(t *testing.T) {
		t.Parallel()

		manager, err := rod.NewBrowserManager(1)
		require.NoError(t, err)
		defer manager.Close()

		firstPID := manager.LauncherPID()
		_, held, err := manager.Incognito()
		require.NoError(t, err)
		defer held()

		_, release, err := manager.Incognito()
		require.NoError(t, err)
		defer release()

		assert.Equal(t, firstPID, manager.LauncherPID())
	})

	t.Run("release is safe to call twice", func(t *testing.T) {
		t.Parallel()

		manager, err := rod.NewBrowserManager(0)
		require.NoError(t, err)
		defer manager.Close()

		_, release, err := manager.Incognito()
		require.NoError(t, err)

		release()
		release()
	})
}
