package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"subclash/internal/logger"
	"subclash/internal/sources"
)

// FileSource reads a subscription saved on disk, or stdin for "-".
type FileSource struct {
	stdin io.Reader
}

func (s *FileSource) Read(ctx context.Context, location string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if location == "-" {
		if s.stdin == nil {
			return "", fmt.Errorf("stdin is not available")
		}
		b, err := io.ReadAll(s.stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(b), nil
	}

	path := strings.TrimPrefix(location, "file://")
	logger.Log.Debugf("Reading subscription file: %s", path)
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read subscription file: %w", err)
	}
	return string(b), nil
}

func init() {
	sources.Register("file", func(deps sources.Deps) sources.Source {
		return &FileSource{stdin: deps.Stdin}
	})
}
