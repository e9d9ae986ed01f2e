package render_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"hexthing/src/render"
)

var errDeviceLost = errors.New("device lost")

func TestIsRetry(t *testing.T) {
	for _, err := range []error{
		render.ErrOutOfDate,
		render.ErrSuboptimal,
		render.ErrTimeout,
		render.ErrSurfaceUnavailable,
		fmt.Errorf("acquire: %w", render.ErrOutOfDate),
	} {
		require.True(t, render.IsRetry(err), err)
	}
	require.False(t, render.IsRetry(errDeviceLost))
	require.False(t, render.IsRetry(nil))
}

func TestFatalError(t *testing.T) {
	err := &render.FatalError{Op: "create pipeline hex", Err: errDeviceLost}
	require.Equal(t, "render: create pipeline hex: device lost", err.Error())
	require.ErrorIs(t, err, errDeviceLost)
}
