package destring

import "context"

// Runtime instantiates embedded decoder binaries. Implementations must not
// grant the binary filesystem or network capability.
type Runtime interface {
	Instantiate(ctx context.Context, binary []byte) (Instance, error)
	Close(ctx context.Context) error
}

// Instance is the foreign-function boundary into one loaded binary. It is
// deliberately narrow: write a string into the binary's memory, invoke the
// exported decode symbol on the resulting offset, read the returned offset
// back out as a string. All memory arithmetic stays behind this interface.
type Instance interface {
	// WriteString copies value, NUL-terminated, into the binary's memory
	// and returns its offset.
	WriteString(ctx context.Context, value string) (uint32, error)
	// Decode invokes the exported decode symbol with the given offset and
	// returns the offset of the result.
	Decode(ctx context.Context, ptr uint32) (uint32, error)
	// ReadString reads the NUL-terminated string at the given offset.
	ReadString(ctx context.Context, ptr uint32) (string, error)
	// Close releases the instance and any memory it handed out.
	Close(ctx context.Context) error
}
