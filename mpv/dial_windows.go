//go:build windows

package mpv

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Microsoft/go-winio"
)

const isFileSocket = false

func socketPath(name string) string {
	return fmt.Sprintf(`\\.\pipe\sbs-player-%d-%s`, os.Getpid(), name)
}

func dialSocket(ctx context.Context, path string) (io.ReadWriteCloser, error) {
	return winio.DialPipeContext(ctx, path)
}
