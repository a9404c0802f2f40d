/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package storage

import "context"

// Namespaced prefixes every key, so several games can share one backend.
type Namespaced struct {
	kv     KV
	prefix string
}

func Namespace(kv KV, prefix string) *Namespaced {
	return &Namespaced{kv: kv, prefix: prefix}
}

func (n *Namespaced) Load(ctx context.Context, key string) ([]byte, error) {
	return n.kv.Load(ctx, n.prefix+key)
}

func (n *Namespaced) Save(ctx context.Context, key string, value []byte) error {
	return n.kv.Save(ctx, n.prefix+key, value)
}

func (n *Namespaced) Delete(ctx context.Context, keys ...string) error {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = n.prefix + k
	}
	return n.kv.Delete(ctx, prefixed...)
}
