package store

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Backend  string
	Dir      string
	Compress bool
	Redis    RedisConfig
}

// Open creates the configured store. Stores that hold connections implement
// io.Closer.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	switch opts.Backend {
	case BackendMemory:
		s = NewMemoryStore()
	case BackendFile:
		s, err = NewFileStore(opts.Dir)
	case BackendRedis:
		s, err = NewRedisStore(ctx, opts.Redis)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	if opts.Compress {
		s = Compressed(s)
	}
	return s, nil
}
