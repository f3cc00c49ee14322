package abi

// OwnedBuffer is a byte sequence copied out of host memory.
// It never aliases host memory and always carries one trailing NUL byte
// after the host content, for consumers that treat it as a C string.
type OwnedBuffer struct {
	data []byte // content followed by a single NUL
}

// NewOwnedBuffer copies content into a fresh OwnedBuffer.
func NewOwnedBuffer(content []byte) OwnedBuffer {
	data := make([]byte, len(content)+1)
	copy(data, content)
	return OwnedBuffer{data: data}
}

// Bytes returns the host content without the trailing NUL.
// Callers must not modify the returned slice.
func (b OwnedBuffer) Bytes() []byte {
	if len(b.data) == 0 {
		return nil
	}
	return b.data[:len(b.data)-1 : len(b.data)-1]
}

// CString returns the content followed by the NUL terminator.
// Callers must not modify the returned slice.
func (b OwnedBuffer) CString() []byte {
	if len(b.data) == 0 {
		return []byte{0}
	}
	return b.data
}

// Len returns the number of content bytes, excluding the terminator.
func (b OwnedBuffer) Len() int {
	if len(b.data) == 0 {
		return 0
	}
	return len(b.data) - 1
}

// String returns the content as a string.
func (b OwnedBuffer) String() string {
	return string(b.Bytes())
}
