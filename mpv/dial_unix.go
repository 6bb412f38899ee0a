//go:build !windows

package mpv

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
)

const isFileSocket = true

func socketPath(name string) string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("sbs-player-%d-%s.sock", os.Getpid(), name))
}

func dialSocket(ctx context.Context, path string) (io.ReadWriteCloser, error) {
	var d net.Dialer
	return d.DialContext(ctx, "unix", path)
}
