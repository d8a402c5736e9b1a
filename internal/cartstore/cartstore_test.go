package cartstore

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/goobits/storefront/internal/commerce"
	"github.com/goobits/storefront/internal/constants"
	"github.com/goobits/storefront/internal/models"
	"github.com/goobits/storefront/internal/storage"
)

func newTestStore() (*Store, *storage.MemoryKV, *storage.MemoryKV) {
	session := storage.NewMemoryKV()
	durable := storage.NewMemoryKV()
	return New(session, durable, nil), session, durable
}

func TestAddAccumulatesQuantity(t *testing.T) {
	store, _, _ := newTestStore()
	ctx := context.Background()
	item := models.CartItem{ID: "prod_1", VariantID: "var_1", Title: "Tee", UnitPrice: 1000}

	if err := store.Add(ctx, item, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := store.Add(ctx, item, 3); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	items := store.Items()
	if len(items) != 1 {
		t.Fatalf("expected single line, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", items[0].Quantity)
	}
	if store.Count() != 5 {
		t.Fatalf("expected count 5, got %d", store.Count())
	}
}

func TestAddDefaultsQuantityToOne(t *testing.T) {
	store, _, _ := newTestStore()
	ctx := context.Background()

	if err := store.Add(ctx, models.CartItem{ID: "prod_1"}, 0); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if got := store.Items()[0].Quantity; got != 1 {
		t.Fatalf("expected quantity 1, got %d", got)
	}
}

func TestCountAndTotal(t *testing.T) {
	store, _, _ := newTestStore()
	ctx := context.Background()

	if err := store.Add(ctx, models.CartItem{ID: "prod_1", VariantID: "var_1", UnitPrice: 1000}, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := store.Add(ctx, models.CartItem{ID: "prod_2", VariantID: "var_2", UnitPrice: 500}, 3); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if store.Count() != 5 {
		t.Fatalf("expected count 5, got %d", store.Count())
	}
	if store.Total() != 3500 {
		t.Fatalf("expected total 3500, got %d", store.Total())
	}
}

func TestUpdateQuantityZeroRemoves(t *testing.T) {
	for _, qty := range []int{0, -1} {
		store, _, _ := newTestStore()
		ctx := context.Background()

		if err := store.Add(ctx, models.CartItem{ID: "prod_1", VariantID: "var_1"}, 2); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if err := store.UpdateQuantity(ctx, "var_1", qty); err != nil {
			t.Fatalf("update with qty %d failed: %v", qty, err)
		}
		if len(store.Items()) != 0 {
			t.Fatalf("expected empty cart after quantity %d", qty)
		}
	}
}

func TestUpdateQuantityAbsentKeyIsNoop(t *testing.T) {
	store, _, _ := newTestStore()
	ctx := context.Background()

	if err := store.Add(ctx, models.CartItem{ID: "prod_1", VariantID: "var_1"}, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := store.UpdateQuantity(ctx, "var_missing", 4); err != nil {
		t.Fatalf("update on absent key should be a no-op, got %v", err)
	}
	items := store.Items()
	if len(items) != 1 || items[0].Quantity != 1 {
		t.Fatalf("state changed on absent key: %+v", items)
	}
}

func TestRemoveAbsentKeyIsNoop(t *testing.T) {
	store, _, _ := newTestStore()
	if err := store.Remove(context.Background(), "var_missing"); err != nil {
		t.Fatalf("remove on absent key should be a no-op, got %v", err)
	}
}

// 变体标识与另一行项的商品标识相同的行项会合并，维持既有行为
func TestIdentityCollisionMerges(t *testing.T) {
	store, _, _ := newTestStore()
	ctx := context.Background()

	if err := store.Add(ctx, models.CartItem{ID: "shared"}, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := store.Add(ctx, models.CartItem{ID: "prod_other", VariantID: "shared"}, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	items := store.Items()
	if len(items) != 1 {
		t.Fatalf("expected collision merge into one line, got %d", len(items))
	}
	if items[0].Quantity != 2 {
		t.Fatalf("expected merged quantity 2, got %d", items[0].Quantity)
	}
}

func TestItemKeyPrefersVariant(t *testing.T) {
	if key := ItemKey(models.CartItem{ID: "prod_1", VariantID: "var_1"}); key != "var_1" {
		t.Fatalf("expected var_1, got %s", key)
	}
	if key := ItemKey(models.CartItem{ID: "prod_1"}); key != "prod_1" {
		t.Fatalf("expected prod_1, got %s", key)
	}
}

func TestMutationPersistsBothTiers(t *testing.T) {
	store, session, durable := newTestStore()
	ctx := context.Background()

	if err := store.Add(ctx, models.CartItem{ID: "prod_1", VariantID: "var_1", UnitPrice: 700}, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	for name, kv := range map[string]*storage.MemoryKV{"session": session, "durable": durable} {
		payload, found, err := kv.Get(ctx, constants.StorageKeyCart)
		if err != nil || !found {
			t.Fatalf("%s tier not written: found=%v err=%v", name, found, err)
		}
		var snap struct {
			Items []models.CartItem `json:"items"`
		}
		if err := json.Unmarshal([]byte(payload), &snap); err != nil {
			t.Fatalf("%s tier payload invalid: %v", name, err)
		}
		if len(snap.Items) != 1 || snap.Items[0].VariantID != "var_1" {
			t.Fatalf("%s tier payload unexpected: %s", name, payload)
		}
	}
}

func TestLoadPrefersSessionTier(t *testing.T) {
	store, session, durable := newTestStore()
	ctx := context.Background()

	_ = session.Set(ctx, constants.StorageKeyCart, `{"items":[{"id":"from_session","quantity":1}]}`)
	_ = durable.Set(ctx, constants.StorageKeyCart, `{"items":[{"id":"from_durable","quantity":1}]}`)

	if err := store.Load(ctx); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	items := store.Items()
	if len(items) != 1 || items[0].ID != "from_session" {
		t.Fatalf("expected session tier to win, got %+v", items)
	}
}

func TestLoadFallsBackToDurableAndSeedsSession(t *testing.T) {
	store, session, durable := newTestStore()
	ctx := context.Background()

	_ = durable.Set(ctx, constants.StorageKeyCart, `{"items":[{"id":"from_durable","quantity":2}]}`)

	if err := store.Load(ctx); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	items := store.Items()
	if len(items) != 1 || items[0].ID != "from_durable" {
		t.Fatalf("expected durable tier fallback, got %+v", items)
	}
	if seeded, found, _ := session.Get(ctx, constants.StorageKeyCart); !found || !strings.Contains(seeded, "from_durable") {
		t.Fatalf("expected session tier seeded from durable, got %q", seeded)
	}
}

func TestLoadEmptyWhenNoTierHasData(t *testing.T) {
	store, _, _ := newTestStore()
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(store.Items()) != 0 {
		t.Fatalf("expected empty cart")
	}
}

func TestApplyExternalSnapshotReplacesWithoutPersisting(t *testing.T) {
	store, session, _ := newTestStore()
	ctx := context.Background()

	if err := store.Add(ctx, models.CartItem{ID: "local", UnitPrice: 100}, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	before, _, _ := session.Get(ctx, constants.StorageKeyCart)

	payload := `{"items":[{"id":"external","unit_price":200,"quantity":3}]}`
	store.ApplyExternalSnapshot(&payload)

	items := store.Items()
	if len(items) != 1 || items[0].ID != "external" || items[0].Quantity != 3 {
		t.Fatalf("expected wholesale replacement, got %+v", items)
	}
	// 外部快照不回写存储层
	after, _, _ := session.Get(ctx, constants.StorageKeyCart)
	if after != before {
		t.Fatalf("external snapshot must not re-persist: before=%q after=%q", before, after)
	}
}

func TestApplyExternalSnapshotNilClears(t *testing.T) {
	store, _, _ := newTestStore()
	ctx := context.Background()

	if err := store.Add(ctx, models.CartItem{ID: "local"}, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	store.ApplyExternalSnapshot(nil)
	if len(store.Items()) != 0 {
		t.Fatalf("expected nil payload to clear cart")
	}
}

func TestSubscribeNotifiedOnChange(t *testing.T) {
	store, _, _ := newTestStore()
	ctx := context.Background()

	var seen [][]models.CartItem
	store.Subscribe(func(items []models.CartItem) {
		seen = append(seen, items)
	})

	if err := store.Add(ctx, models.CartItem{ID: "prod_1"}, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	if len(seen) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(seen))
	}
	if len(seen[0]) != 1 || len(seen[1]) != 0 {
		t.Fatalf("unexpected notification payloads: %+v", seen)
	}
}

func TestResetClearsPersistedIdentity(t *testing.T) {
	store, session, durable := newTestStore()
	ctx := context.Background()

	if err := store.SetCartID(ctx, "cart_9"); err != nil {
		t.Fatalf("set cart id failed: %v", err)
	}
	if err := store.SetAuthToken(ctx, "tok_1"); err != nil {
		t.Fatalf("set token failed: %v", err)
	}
	if err := store.Add(ctx, models.CartItem{ID: "prod_1"}, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if len(store.Items()) != 0 {
		t.Fatalf("expected empty cart after reset")
	}
	for _, kv := range []*storage.MemoryKV{session, durable} {
		if _, found, _ := kv.Get(ctx, constants.StorageKeyCartID); found {
			t.Fatalf("cart id should be removed")
		}
		if _, found, _ := kv.Get(ctx, constants.StorageKeyAuthToken); found {
			t.Fatalf("auth token should be removed")
		}
	}
}

type recordingUpdater struct {
	cartID string
	calls  int
	err    error
}

func (u *recordingUpdater) Update(_ context.Context, cartID string, _ commerce.CartUpdate) (*models.Cart, error) {
	u.cartID = cartID
	u.calls++
	return &models.Cart{ID: cartID}, u.err
}

func TestAssociateWithCustomer(t *testing.T) {
	session := storage.NewMemoryKV()
	updater := &recordingUpdater{}
	store := New(session, storage.NewMemoryKV(), updater)
	ctx := context.Background()

	// 无服务端购物车时不调用
	store.AssociateWithCustomer(ctx)
	if updater.calls != 0 {
		t.Fatalf("expected no call without cart id")
	}

	if err := store.SetCartID(ctx, "cart_42"); err != nil {
		t.Fatalf("set cart id failed: %v", err)
	}
	store.AssociateWithCustomer(ctx)
	if updater.calls != 1 || updater.cartID != "cart_42" {
		t.Fatalf("expected update for cart_42, got calls=%d id=%s", updater.calls, updater.cartID)
	}

	// 失败仅记录日志，不向上抛
	updater.err = context.DeadlineExceeded
	store.AssociateWithCustomer(ctx)
	if updater.calls != 2 {
		t.Fatalf("expected second attempt, got %d", updater.calls)
	}
}

// gatingKV 首次写入在进入后阻塞，直到测试放行，用于复现并发持久化时序
type gatingKV struct {
	mu      sync.Mutex
	writes  []string
	entered chan struct{}
	release chan struct{}
	gated   bool
}

func newGatingKV() *gatingKV {
	return &gatingKV{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		gated:   true,
	}
}

func (kv *gatingKV) Get(_ context.Context, _ string) (string, bool, error) {
	return "", false, nil
}

func (kv *gatingKV) Set(_ context.Context, _ string, value string) error {
	kv.mu.Lock()
	first := kv.gated
	kv.gated = false
	kv.mu.Unlock()
	if first {
		close(kv.entered)
		<-kv.release
	}
	kv.mu.Lock()
	kv.writes = append(kv.writes, value)
	kv.mu.Unlock()
	return nil
}

func (kv *gatingKV) Delete(_ context.Context, _ string) error {
	return nil
}

func (kv *gatingKV) Writes() []string {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	out := make([]string, len(kv.writes))
	copy(out, kv.writes)
	return out
}

// 并发变更的快照必须按内存更新顺序落盘：
// 第一次 Add 在会话层写入中被阻塞时，第二次 Add 不得先行持久化。
func TestConcurrentMutationsPersistInMemoryOrder(t *testing.T) {
	session := newGatingKV()
	durable := storage.NewMemoryKV()
	store := New(session, durable, nil)
	ctx := context.Background()

	done := make(chan error, 2)
	go func() { done <- store.Add(ctx, models.CartItem{ID: "prod_a"}, 1) }()
	<-session.entered
	go func() { done <- store.Add(ctx, models.CartItem{ID: "prod_b"}, 1) }()
	close(session.release)
	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	writes := session.Writes()
	if len(writes) != 2 {
		t.Fatalf("expected 2 session writes, got %d", len(writes))
	}
	var first, second snapshot
	if err := json.Unmarshal([]byte(writes[0]), &first); err != nil {
		t.Fatalf("decode first write failed: %v", err)
	}
	if err := json.Unmarshal([]byte(writes[1]), &second); err != nil {
		t.Fatalf("decode second write failed: %v", err)
	}
	if len(first.Items) != 1 || len(second.Items) != 2 {
		t.Fatalf("writes out of order: first=%d items, second=%d items", len(first.Items), len(second.Items))
	}

	// 持久层最终快照与内存一致
	payload, found, err := durable.Get(ctx, constants.StorageKeyCart)
	if err != nil || !found {
		t.Fatalf("durable snapshot missing: found=%v err=%v", found, err)
	}
	var last snapshot
	if err := json.Unmarshal([]byte(payload), &last); err != nil {
		t.Fatalf("decode durable snapshot failed: %v", err)
	}
	if len(last.Items) != len(store.Items()) {
		t.Fatalf("durable snapshot has %d items, memory has %d", len(last.Items), len(store.Items()))
	}
}
