// internal/common/prompt/prompt.go
package prompt

import (
	"os"
	"sync"
	"time"

	"askai-service/internal/common/logger"
)

// FallbackPrompt is sent to the completion service when the prompt file
// cannot be read, so a deployment mistake degrades answers instead of
// failing requests.
const FallbackPrompt = "System prompt file not found."

type Loader struct {
	path     string
	cacheTTL time.Duration
	logger   logger.Logger

	mu       sync.RWMutex
	text     string
	loadedAt time.Time
}

func NewLoader(path string, cacheTTL time.Duration, log logger.Logger) *Loader {
	return &Loader{
		path:     path,
		cacheTTL: cacheTTL,
		logger:   log.WithFields(map[string]interface{}{"component": "prompt"}),
	}
}

// Load returns the system prompt text, re-reading the file at most once per
// cache TTL. A read failure is logged and the fallback returned; it never
// fails the request. Failed reads are not cached, so the next call retries.
func (l *Loader) Load() string {
	l.mu.RLock()
	if !l.loadedAt.IsZero() && time.Since(l.loadedAt) < l.cacheTTL {
		text := l.text
		l.mu.RUnlock()
		return text
	}
	l.mu.RUnlock()

	raw, err := os.ReadFile(l.path)
	if err != nil {
		l.logger.Error("system prompt file not readable", map[string]interface{}{
			"path":  l.path,
			"error": err.Error(),
		})
		return FallbackPrompt
	}

	l.mu.Lock()
	l.text = string(raw)
	l.loadedAt = time.Now()
	text := l.text
	l.mu.Unlock()

	return text
}
