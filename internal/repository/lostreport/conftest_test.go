package lostreport

import (
	"context"
	"errors"
	"sort"
)

var errStoreDown = errors.New("connection refused")

// memStore is an in-memory implementation of the consumer interface.
// failOp makes the named operation return errStoreDown.
type memStore struct {
	hashes map[string]map[string]string
	sets   map[string]map[string]struct{}
	failOp string
}

func newMemStore() *memStore {
	return &memStore{
		hashes: map[string]map[string]string{},
		sets:   map[string]map[string]struct{}{},
	}
}

func (m *memStore) HSet(_ context.Context, key string, fields map[string]string) error {
	if m.failOp == "HSET" {
		return errStoreDown
	}
	h, ok := m.hashes[key]
	if !ok {
		h = map[string]string{}
		m.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (m *memStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	if m.failOp == "HGETALL" {
		return nil, errStoreDown
	}
	out := map[string]string{}
	for k, v := range m.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (m *memStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.failOp == "HGETALLMULTI" {
		return nil, errStoreDown
	}
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		out[i], _ = m.HGetAll(ctx, k)
	}
	return out, nil
}

func (m *memStore) SAdd(_ context.Context, key string, members ...string) error {
	if m.failOp == "SADD" {
		return errStoreDown
	}
	s, ok := m.sets[key]
	if !ok {
		s = map[string]struct{}{}
		m.sets[key] = s
	}
	for _, v := range members {
		s[v] = struct{}{}
	}
	return nil
}

func (m *memStore) SRem(_ context.Context, key string, members ...string) error {
	if m.failOp == "SREM" {
		return errStoreDown
	}
	for _, v := range members {
		delete(m.sets[key], v)
	}
	return nil
}

func (m *memStore) SMembers(_ context.Context, key string) ([]string, error) {
	if m.failOp == "SMEMBERS" {
		return nil, errStoreDown
	}
	out := make([]string, 0, len(m.sets[key]))
	for v := range m.sets[key] {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}
