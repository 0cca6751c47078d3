package merge

import (
	"context"
	"os"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depmerge/pkg/observability"
	"github.com/matzehuels/depmerge/pkg/resolved"
)

// ReadManifest reads the external manifest at path. A missing or unreadable
// file is treated as absent and yields nil.
func ReadManifest(path string, logger *log.Logger) []byte {
	if path == "" {
		return nil
	}
	if logger == nil {
		logger = log.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("external manifest unavailable", "path", path, "err", err)
		return nil
	}
	return data
}

// DecodeExternal decodes the external manifest. Malformed lines are logged
// as warnings and void the whole decode, leaving an empty graph.
func DecodeExternal(ctx context.Context, data []byte, logger *log.Logger) *resolved.Graph {
	if logger == nil {
		logger = log.Default()
	}
	if len(data) == 0 {
		return resolved.NewGraph()
	}

	hooks := observability.Merge()
	malformed := 0
	deps := resolved.Decode(data, func(n int, line string) {
		malformed++
		logger.Warn("malformed line in external dependency manifest", "line", n, "text", line)
		hooks.OnMalformedLine(ctx, n)
	})
	hooks.OnDecode(ctx, len(deps), malformed)

	if malformed > 0 {
		logger.Warn("ignoring external dependency manifest", "malformed", malformed)
	}
	return resolved.GraphOf(deps...)
}
