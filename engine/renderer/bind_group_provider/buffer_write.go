package bind_group_provider

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// WriteBatch collects the buffer writes produced during one frame so they can be
// submitted to the queue in a single renderer call.
type WriteBatch []BufferWrite

// Add appends a write of data at offset 0 of the given binding. Empty data and nil providers are ignored.
//
// Parameters:
//   - provider: the provider owning the target buffer
//   - binding: the binding index of the target buffer
//   - data: the bytes to write
func (b *WriteBatch) Add(provider BindGroupProvider, binding int, data []byte) {
	if provider == nil || len(data) == 0 {
		return
	}
	*b = append(*b, BufferWrite{Provider: provider, Binding: binding, Data: data})
}

// Reset empties the batch while keeping its capacity.
func (b *WriteBatch) Reset() {
	*b = (*b)[:0]
}
