package vulkan

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"hexthing/src/render"
)

// newError turns a failed result into an error annotated with op. Results
// the frame loop recovers from map to the render retry errors so callers can
// test them with render.IsRetry.
func newError(ret vk.Result, op string) error {
	switch ret {
	case vk.Success:
		return nil
	case vk.ErrorOutOfDate:
		return errors.WithMessage(render.ErrOutOfDate, op)
	case vk.Suboptimal:
		return errors.WithMessage(render.ErrSuboptimal, op)
	case vk.Timeout, vk.NotReady:
		return errors.WithMessage(render.ErrTimeout, op)
	}
	if err := vk.Error(ret); err != nil {
		return errors.Wrapf(err, "%s (%d)", op, ret)
	}
	return errors.Errorf("%s: unexpected result %d", op, ret)
}

func isError(ret vk.Result) bool {
	return ret != vk.Success
}
