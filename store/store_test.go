package store

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const carsDoc = `{"name":"cars","version":"1.0.0","errors":[],"operations":[]}`

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStoreWithClient(client, DefaultRedisPrefix)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func backends(t *testing.T) map[string]Store {
	t.Helper()
	fileStore, err := NewFileStoreWithFs(afero.NewMemMapFs(), "/var/extmodel")
	require.NoError(t, err)
	redisStore, _ := setupTestRedis(t)

	return map[string]Store{
		"memory":     NewMemoryStore(),
		"file":       fileStore,
		"redis":      redisStore,
		"compressed": Compressed(NewMemoryStore()),
	}
}

func TestStore_Contract(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Get(ctx, "cars")
			assert.True(t, errors.Is(err, ErrNotFound))
			ok, err := s.Exists(ctx, "cars")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Put(ctx, "cars", []byte(carsDoc)))
			require.NoError(t, s.Put(ctx, "boats", []byte(`{"name":"boats"}`)))

			data, err := s.Get(ctx, "cars")
			require.NoError(t, err)
			assert.JSONEq(t, carsDoc, string(data))

			ok, err = s.Exists(ctx, "cars")
			require.NoError(t, err)
			assert.True(t, ok)

			names, err := s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"boats", "cars"}, names)

			require.NoError(t, s.Put(ctx, "cars", []byte(`{"name":"cars","version":"2.0.0"}`)))
			data, err = s.Get(ctx, "cars")
			require.NoError(t, err)
			assert.Contains(t, string(data), "2.0.0")

			require.NoError(t, s.Delete(ctx, "cars"))
			require.NoError(t, s.Delete(ctx, "cars"), "deleting twice is fine")
			names, err = s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"boats"}, names)

			err = s.Put(ctx, "../escape", []byte("{}"))
			assert.True(t, errors.Is(err, ErrInvalidName))
		})
	}
}

func TestStore_EmptyList(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			names, err := s.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, names)
		})
	}
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Put(ctx, "cars", []byte("{}")), context.Canceled)
	_, err := s.Get(ctx, "cars")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStore_CopiesData(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	doc := []byte(carsDoc)
	require.NoError(t, s.Put(ctx, "cars", doc))
	doc[0] = 'X'

	data, err := s.Get(ctx, "cars")
	require.NoError(t, err)
	assert.Equal(t, carsDoc, string(data))
}

func TestFileStore_Layout(t *testing.T) {
	fsys := afero.NewMemMapFs()
	s, err := NewFileStoreWithFs(fsys, "/data")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "cars", []byte(carsDoc)))
	require.NoError(t, afero.WriteFile(fsys, "/data/notes.txt", []byte("ignored"), 0o644))
	require.NoError(t, fsys.MkdirAll("/data/nested.json", 0o755))

	ok, err := afero.Exists(fsys, "/data/cars.json")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = afero.Exists(fsys, "/data/cars.json.tmp")
	require.NoError(t, err)
	assert.False(t, ok)

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cars"}, names)

	_, err = NewFileStoreWithFs(fsys, "")
	assert.Error(t, err)
}

func TestRedisStore_Keys(t *testing.T) {
	s, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "cars", []byte(carsDoc)))
	require.NoError(t, mr.Set("other:key", "x"))

	got, err := mr.Get("extmodel:cars")
	require.NoError(t, err)
	assert.Equal(t, carsDoc, got)

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cars"}, names, "keys outside the prefix are not listed")
}

func TestNewRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := DefaultRedisConfig()
	cfg.Addr = mr.Addr()
	s, err := NewRedisStore(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()

	cfg.Addr = "localhost:99999"
	_, err = NewRedisStore(context.Background(), cfg)
	assert.Error(t, err)
}

func TestCompressed(t *testing.T) {
	inner := NewMemoryStore()
	s := Compressed(inner)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "cars", []byte(carsDoc)))

	raw, err := inner.Get(ctx, "cars")
	require.NoError(t, err)
	assert.True(t, isGzip(raw))

	data, err := s.Get(ctx, "cars")
	require.NoError(t, err)
	assert.Equal(t, carsDoc, string(data))

	// documents written without compression are still readable
	require.NoError(t, inner.Put(ctx, "boats", []byte(`{"name":"boats"}`)))
	data, err = s.Get(ctx, "boats")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"boats"}`, string(data))

	_, err = Decompress([]byte{0x1f, 0x8b, 0x00})
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, Options{Backend: BackendFile, Dir: t.TempDir(), Compress: true})
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "cars", []byte(carsDoc)))
	data, err := s.Get(ctx, "cars")
	require.NoError(t, err)
	assert.Equal(t, carsDoc, string(data))

	mr := miniredis.RunT(t)
	s, err = Open(ctx, Options{Backend: BackendRedis, Redis: RedisConfig{Addr: mr.Addr(), Prefix: "test:"}})
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)
	require.NoError(t, s.(*RedisStore).Close())

	_, err = Open(ctx, Options{Backend: "s3"})
	assert.ErrorContains(t, err, `unknown store backend "s3"`)
}

func TestValidateName(t *testing.T) {
	for _, name := range []string{"cars", "mule-http", "db_2.1"} {
		assert.NoError(t, ValidateName(name), name)
	}
	for _, name := range []string{"", ".hidden", "a/b", "a b", "../x"} {
		assert.True(t, errors.Is(ValidateName(name), ErrInvalidName), name)
	}
}
