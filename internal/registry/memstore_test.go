package registry

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"wordvault/internal/storage"
)

// memStore is an in-memory storage.Storage used to drive the registries
// through real put/get/list/delete sequences in tests.
type memStore struct {
	mu      sync.Mutex
	objects map[string]memObject
}

type memObject struct {
	data []byte
	meta map[string]string
	mod  time.Time
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string]memObject)}
}

func (s *memStore) Put(_ context.Context, key string, r io.Reader, opt storage.PutObjectOptions) (storage.ObjectInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memObject{data: data, meta: opt.Metadata, mod: time.Now()}
	return storage.ObjectInfo{Key: key, Size: int64(len(data)), Metadata: opt.Metadata}, nil
}

func (s *memStore) Get(_ context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[key]
	if !ok {
		return nil, storage.ObjectInfo{}, fmt.Errorf("%w: %s", storage.ErrNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(o.data)), s.info(key, o), nil
}

func (s *memStore) Stat(_ context.Context, key string) (storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[key]
	if !ok {
		return storage.ObjectInfo{}, fmt.Errorf("%w: %s", storage.ErrNotFound, key)
	}
	return s.info(key, o), nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memStore) List(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]storage.ObjectInfo, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.info(k, s.objects[k]))
	}
	return out, nil
}

func (s *memStore) PresignGet(_ context.Context, key string, expiry time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return "", fmt.Errorf("%w: %s", storage.ErrNotFound, key)
	}
	return fmt.Sprintf("https://store.test/%s?expires=%d", key, int64(expiry.Seconds())), nil
}

func (s *memStore) info(key string, o memObject) storage.ObjectInfo {
	return storage.ObjectInfo{
		Key:          key,
		Size:         int64(len(o.data)),
		LastModified: o.mod,
		Metadata:     o.meta,
	}
}

func (s *memStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

func (s *memStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for k := range s.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
