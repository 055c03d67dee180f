// Package catalog persists products and ateliers as JSON documents in a
// key-value store.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/stylegenie/matcher/internal/db"
	"github.com/stylegenie/matcher/internal/domain"
)

// store is the consumer interface for the catalog (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	GetMulti(ctx context.Context, keys []string) ([][]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// docs is a typed view over one key prefix.
type docs[D any] struct {
	store  store
	prefix string
	kind   string
	logger *zap.Logger
}

func (d docs[D]) key(id string) string {
	return d.prefix + id
}

func (d docs[D]) put(ctx context.Context, id string, doc D) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", d.kind, err)
	}
	if err := d.store.Set(ctx, d.key(id), data); err != nil {
		return fmt.Errorf("set %s %s: %w: %w", d.kind, id, domain.ErrUpstreamUnavailable, err)
	}
	return nil
}

func (d docs[D]) get(ctx context.Context, id string) (D, error) {
	var doc D
	raw, err := d.store.Get(ctx, d.key(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return doc, fmt.Errorf("%s %q: %w", d.kind, id, domain.ErrNotFound)
		}
		return doc, fmt.Errorf("get %s %s: %w: %w", d.kind, id, domain.ErrUpstreamUnavailable, err)
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("decode %s %s: %w", d.kind, id, err)
	}
	return doc, nil
}

func (d docs[D]) del(ctx context.Context, id string) error {
	// Del does not report existence; read first so missing ids surface as 404.
	if _, err := d.store.Get(ctx, d.key(id)); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return fmt.Errorf("%s %q: %w", d.kind, id, domain.ErrNotFound)
		}
		return fmt.Errorf("get %s %s: %w: %w", d.kind, id, domain.ErrUpstreamUnavailable, err)
	}
	if err := d.store.Del(ctx, d.key(id)); err != nil {
		return fmt.Errorf("del %s %s: %w: %w", d.kind, id, domain.ErrUpstreamUnavailable, err)
	}
	return nil
}

// all returns every decodable document under the prefix. Keys that vanish
// between SCAN and GET, and documents that fail to decode, are skipped.
func (d docs[D]) all(ctx context.Context) ([]D, error) {
	keys, err := d.store.Scan(ctx, d.prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w: %w", d.kind, domain.ErrUpstreamUnavailable, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := d.store.GetMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w: %w", d.kind, domain.ErrUpstreamUnavailable, err)
	}

	out := make([]D, 0, len(values))
	for i, raw := range values {
		if raw == nil {
			continue
		}
		var doc D
		if err := json.Unmarshal(raw, &doc); err != nil {
			d.logger.Warn("Skipping undecodable catalog document",
				zap.String("kind", d.kind),
				zap.String("id", strings.TrimPrefix(keys[i], d.prefix)),
				zap.Error(err),
			)
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}
