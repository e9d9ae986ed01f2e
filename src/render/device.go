package render

import "log/slog"

// logAdapter records the adapter the device was opened on. The memory-type
// table is only interesting when chasing allocation failures, so it goes to
// Debug.
func logAdapter(l *slog.Logger, info AdapterInfo) {
	l.Info("device opened", "adapter", info.Name, "queue_family", info.QueueFamily)
	for i, mt := range info.MemoryTypes {
		l.Debug("memory type",
			"index", i,
			"heap", mt.HeapIndex,
			"host_visible", mt.HostVisible,
			"host_coherent", mt.HostCoherent,
			"device_local", mt.DeviceLocal)
	}
}

// AnyMemoryType allows every memory type of the adapter.
const AnyMemoryType = ^uint32(0)

// HostVisibleMemoryType returns the index of the first memory type allowed by
// the typeBits mask that the host can map coherently, or false if there is
// none.
func (a AdapterInfo) HostVisibleMemoryType(typeBits uint32) (uint32, bool) {
	for i, mt := range a.MemoryTypes {
		if i < 32 && typeBits&(1<<uint(i)) != 0 && mt.HostVisible && mt.HostCoherent {
			return uint32(i), true
		}
	}
	return 0, false
}
