package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/stylegenie/matcher/internal/db"
	"github.com/stylegenie/matcher/internal/db/memory"
	"github.com/stylegenie/matcher/internal/domain"
	"github.com/stylegenie/matcher/internal/domain/atelier"
	"github.com/stylegenie/matcher/internal/domain/product"
)

func TestProductRepo_PutUsesPrefixedKey(t *testing.T) {
	repo, ms := newTestProductRepo(t)

	var gotKey string
	var gotDoc map[string]any
	ms.setFn = func(_ context.Context, key string, value []byte) error {
		gotKey = key
		return json.Unmarshal(value, &gotDoc)
	}

	p := testProduct("p1", "dress")
	if err := repo.Put(context.Background(), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "stylegenie:product:p1" {
		t.Errorf("expected key stylegenie:product:p1, got %s", gotKey)
	}
	if gotDoc["availability"] != true {
		t.Errorf("expected availability=true in stored doc, got %v", gotDoc["availability"])
	}
	if _, ok := gotDoc["brand_score"]; ok {
		t.Error("nil brand score should be omitted")
	}
}

func TestProductRepo_GetDefaultsAvailability(t *testing.T) {
	repo, ms := newTestProductRepo(t)
	ms.getFn = func(_ context.Context, key string) ([]byte, error) {
		switch key {
		case "stylegenie:product:legacy":
			return []byte(`{"id":"legacy","name":"Coat","category":"coat","price":100,"image":"https://x/a.jpg","url":"https://x/a"}`), nil
		case "stylegenie:product:sold":
			return []byte(`{"id":"sold","name":"Coat","category":"coat","price":100,"image":"https://x/a.jpg","url":"https://x/a","availability":false}`), nil
		}
		return nil, db.ErrKeyNotFound
	}

	p, err := repo.Get(context.Background(), "legacy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Available {
		t.Error("document without availability should decode as available")
	}

	p, err = repo.Get(context.Background(), "sold")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Available {
		t.Error("availability: false should be kept")
	}
}

func TestProductRepo_PutError(t *testing.T) {
	repo, ms := newTestProductRepo(t)
	ms.setFn = func(_ context.Context, _ string, _ []byte) error {
		return &db.Error{Op: db.OpSet, Err: errors.New("READONLY")}
	}

	p := testProduct("p1", "dress")
	err := repo.Put(context.Background(), &p)
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestProductRepo_GetNotFound(t *testing.T) {
	repo, _ := newTestProductRepo(t)

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProductRepo_DeleteNotFound(t *testing.T) {
	repo, ms := newTestProductRepo(t)
	ms.delFn = func(_ context.Context, _ string) error {
		t.Fatal("Del must not be called for a missing key")
		return nil
	}

	err := repo.Delete(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProductRepo_ListSkipsBrokenDocuments(t *testing.T) {
	repo, ms := newTestProductRepo(t)

	good, _ := json.Marshal(toProductDoc(ptr(testProduct("p2", "dress"))))
	other, _ := json.Marshal(toProductDoc(ptr(testProduct("p1", "dress"))))

	ms.scanFn = func(_ context.Context, pattern string) ([]string, error) {
		if pattern != "stylegenie:product:*" {
			t.Errorf("unexpected pattern %s", pattern)
		}
		return []string{
			"stylegenie:product:p2",
			"stylegenie:product:bad",
			"stylegenie:product:gone",
			"stylegenie:product:p1",
		}, nil
	}
	ms.getMultiFn = func(_ context.Context, keys []string) ([][]byte, error) {
		return [][]byte{good, []byte("{not json"), nil, other}, nil
	}

	got, err := repo.List(context.Background(), product.Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 products, got %d", len(got))
	}
	if got[0].ID != "p1" || got[1].ID != "p2" {
		t.Errorf("expected products ordered by id, got %s, %s", got[0].ID, got[1].ID)
	}
}

func TestProductRepo_ListScanError(t *testing.T) {
	repo, ms := newTestProductRepo(t)
	ms.scanFn = func(_ context.Context, _ string) ([]string, error) {
		return nil, errors.New("connection refused")
	}

	_, err := repo.List(context.Background(), product.Filter{})
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestProductRepo_ListEmpty(t *testing.T) {
	repo, ms := newTestProductRepo(t)
	ms.getMultiFn = func(_ context.Context, _ []string) ([][]byte, error) {
		t.Fatal("GetMulti must not be called without keys")
		return nil, nil
	}

	got, err := repo.List(context.Background(), product.Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no products, got %d", len(got))
	}
}

func TestProductRepo_RoundTripMemory(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepo(memory.NewStore(), zap.NewNop())

	dress := testProduct("p1", "dress")
	suit := testProduct("p2", "suit")
	for _, p := range []product.Product{dress, suit} {
		if err := repo.Put(ctx, &p); err != nil {
			t.Fatalf("put %s: %v", p.ID, err)
		}
	}

	got, err := repo.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(got, dress) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, dress)
	}

	list, err := repo.List(ctx, product.Filter{Category: "suit"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != "p2" {
		t.Errorf("expected only p2, got %+v", list)
	}

	if err := repo.Delete(ctx, "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, "p1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestAtelierRepo_RoundTripMemory(t *testing.T) {
	ctx := context.Background()
	repo := NewAtelierRepo(memory.NewStore(), zap.NewNop())

	moscow := testAtelier("a1", "Moscow, Arbat 10", "dress")
	kazan := testAtelier("a2", "Kazan", "dress", "suit")
	for _, a := range []atelier.Atelier{moscow, kazan} {
		if err := repo.Put(ctx, &a); err != nil {
			t.Fatalf("put %s: %v", a.ID, err)
		}
	}

	got, err := repo.Get(ctx, "a1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(got, moscow) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, moscow)
	}

	tests := []struct {
		name   string
		filter atelier.Filter
		want   []string
	}{
		{"all", atelier.Filter{}, []string{"a1", "a2"}},
		{"category", atelier.Filter{Category: "suit"}, []string{"a2"}},
		{"location", atelier.Filter{Location: "moscow"}, []string{"a1"}},
		{"no match", atelier.Filter{Category: "suit", Location: "moscow"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			var ids []string
			for _, a := range list {
				ids = append(ids, a.ID)
			}
			if !reflect.DeepEqual(ids, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, ids)
			}
		})
	}
}

func TestAtelierRepo_DefaultComplexityRange(t *testing.T) {
	repo, ms := newTestAtelierRepo(t)
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte(`{"id":"a1","name":"A","location":"Moscow","rating":4,"categories":["dress"]}`), nil
	}

	got, err := repo.Get(context.Background(), "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got.ComplexityRange, atelier.DefaultComplexityRange()) {
		t.Errorf("expected default complexity range, got %v", got.ComplexityRange)
	}
}

func ptr[T any](v T) *T { return &v }
