package workdir

import (
	"errors"
	"testing"

	"github.com/m44rten1/groundwork/internal/effects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnter(t *testing.T) {
	t.Parallel()

	fx := effects.NewTestEffects()
	fx.AddRepo("platform", effects.NewFakeRepo("master", false))

	restore, err := Enter(fx, "platform")
	require.NoError(t, err)
	assert.Equal(t, "/workspace/platform", fx.Cwd)

	require.NoError(t, restore())
	assert.Equal(t, effects.WorkspaceRoot, fx.Cwd)
}

func TestEnter_Nested(t *testing.T) {
	t.Parallel()

	fx := effects.NewTestEffects()
	fx.Dirs["/workspace/a"] = true
	fx.Dirs["/workspace/a/b"] = true

	restoreA, err := Enter(fx, "a")
	require.NoError(t, err)
	restoreB, err := Enter(fx, "b")
	require.NoError(t, err)
	assert.Equal(t, "/workspace/a/b", fx.Cwd)

	require.NoError(t, restoreB())
	assert.Equal(t, "/workspace/a", fx.Cwd)
	require.NoError(t, restoreA())
	assert.Equal(t, "/workspace", fx.Cwd)
}

func TestEnter_MissingDirectory(t *testing.T) {
	t.Parallel()

	fx := effects.NewTestEffects()

	restore, err := Enter(fx, "missing")
	require.Error(t, err)
	assert.Nil(t, restore)
	assert.Equal(t, effects.WorkspaceRoot, fx.Cwd)
}

func TestEnter_GetwdFails(t *testing.T) {
	t.Parallel()

	fx := effects.NewTestEffects()
	fx.Dirs["/workspace/a"] = true
	fx.Errors[effects.OpGetwd] = errors.New("getwd: no such file or directory")

	_, err := Enter(fx, "a")
	require.Error(t, err)
	assert.Equal(t, effects.WorkspaceRoot, fx.Cwd, "no chdir without a way back")
}

func TestEnter_RestoresOnPanic(t *testing.T) {
	t.Parallel()

	fx := effects.NewTestEffects()
	fx.Dirs["/workspace/a"] = true

	func() {
		defer func() { _ = recover() }()
		restore, err := Enter(fx, "a")
		require.NoError(t, err)
		defer restore() //nolint:errcheck
		panic("boom")
	}()

	assert.Equal(t, effects.WorkspaceRoot, fx.Cwd)
}
