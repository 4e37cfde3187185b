package logger

import (
	"os"
	"sync"
)

var (
	hostName string
	hostOnce sync.Once
)

// Hostname returns the cached machine name, "unknown" when it cannot be resolved.
func Hostname() string {
	hostOnce.Do(func() {
		h, err := os.Hostname()
		if err != nil || h == "" {
			h = "unknown"
		}
		hostName = h
	})
	return hostName
}
