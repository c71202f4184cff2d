package runner_test

import (
	"io"
)

// ioPipe returns a reader that blocks until the writer is closed.
func ioPipe() (io.Reader, io.Closer) {
	r, w := io.Pipe()
	return r, w
}
