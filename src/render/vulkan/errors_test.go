package vulkan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"

	"hexthing/src/render"
)

func TestNewError(t *testing.T) {
	require.NoError(t, newError(vk.Success, "submit"))

	tests := []struct {
		ret  vk.Result
		want error
	}{
		{vk.ErrorOutOfDate, render.ErrOutOfDate},
		{vk.Suboptimal, render.ErrSuboptimal},
		{vk.Timeout, render.ErrTimeout},
		{vk.NotReady, render.ErrTimeout},
	}
	for _, tt := range tests {
		err := newError(tt.ret, "acquire next image")
		require.ErrorIs(t, err, tt.want)
		require.True(t, render.IsRetry(err))
		require.Contains(t, err.Error(), "acquire next image")
	}

	err := newError(vk.ErrorDeviceLost, "queue submit")
	require.Error(t, err)
	require.False(t, render.IsRetry(err))
	require.Contains(t, err.Error(), "queue submit")
}

func TestTimeoutNanos(t *testing.T) {
	require.Equal(t, uint64(vk.MaxUint64), timeoutNanos(0))
	require.Equal(t, uint64(1500000), timeoutNanos(1500*time.Microsecond))
}

func TestSafeString(t *testing.T) {
	require.Equal(t, "main\x00", safeString("main"))
	require.Equal(t, "main\x00", safeString("main\x00"))
	require.Equal(t, "\x00", safeString(""))
}

func TestBlendAttachment(t *testing.T) {
	alpha := blendAttachment(render.BlendAlpha)
	require.Equal(t, vk.Bool32(vk.True), alpha.BlendEnable)
	require.Equal(t, vk.BlendFactorSrcAlpha, alpha.SrcColorBlendFactor)
	require.Equal(t, vk.BlendFactorOneMinusSrcAlpha, alpha.DstColorBlendFactor)

	replace := blendAttachment(render.BlendReplace)
	require.Equal(t, vk.Bool32(vk.False), replace.BlendEnable)
}

func TestEnumValuesMatch(t *testing.T) {
	require.Equal(t, int64(vk.FormatR8g8b8a8Srgb), int64(render.FormatR8G8B8A8Srgb))
	require.Equal(t, int64(vk.FormatB8g8r8a8Srgb), int64(render.FormatB8G8R8A8Srgb))
	require.Equal(t, int64(vk.FormatB8g8r8a8Unorm), int64(render.FormatB8G8R8A8Unorm))
	require.Equal(t, int64(vk.FormatR32g32Sfloat), int64(render.FormatR32G32Sfloat))
	require.Equal(t, int64(vk.ImageLayoutPresentSrc), int64(render.ImageLayoutPresentSrc))
	require.Equal(t, int64(vk.ImageLayoutColorAttachmentOptimal), int64(render.ImageLayoutColorAttachmentOptimal))
	require.Equal(t, int64(vk.PipelineStageColorAttachmentOutputBit), int64(render.PipelineStageColorAttachmentOutput))
	require.Equal(t, int64(vk.ShaderStageFragmentBit), int64(render.ShaderStageFragment))
	require.Equal(t, int64(vk.BufferUsageVertexBufferBit), int64(render.BufferUsageVertex))
	require.Equal(t, int64(vk.BufferUsageUniformBufferBit), int64(render.BufferUsageUniform))
	require.Equal(t, int64(vk.DescriptorTypeUniformBuffer), int64(render.DescriptorTypeUniformBuffer))
	require.Equal(t, int64(vk.PrimitiveTopologyTriangleList), int64(render.TopologyTriangleList))
	require.Equal(t, int64(vk.AttachmentLoadOpClear), int64(render.LoadOpClear))
}
