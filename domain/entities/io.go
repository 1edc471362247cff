package entities

// IO is the guest output accumulated since the previous flush.
type IO struct {
	Out Base64ByteSlice `json:"out"`
	Err Base64ByteSlice `json:"err"`
}

// NewIO wraps raw stdout and stderr bytes.
func NewIO(out, errOut []byte) IO {
	return IO{Out: NewBase64ByteSlice(out), Err: NewBase64ByteSlice(errOut)}
}

// Empty reports whether neither stream carries data.
func (io IO) Empty() bool {
	return io.Out.Len() == 0 && io.Err.Len() == 0
}
