package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/domain/events"
	"github.com/AtRiskMedia/storefront-go/internal/sync/remote"
)

var errRemote = errors.New("remote unavailable")

// fakeClient is an in-memory remote.Client. Set fail to make the next
// calls to the named operation return errRemote.
type fakeClient struct {
	mu       sync.Mutex
	content  map[string]string
	products []*catalog.Product
	settings *catalog.WebsiteSettings
	fail     map[string]bool
	calls    map[string]int
	nextID   int
	feed     chan events.ChangeEvent
	// echoInserts runs with the new rows before InsertProducts returns.
	echoInserts func([]*catalog.Product)
}

var _ remote.Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{
		content: map[string]string{},
		fail:    map[string]bool{},
		calls:   map[string]int{},
		feed:    make(chan events.ChangeEvent, 16),
	}
}

func (f *fakeClient) enter(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	if f.fail[op] {
		return errRemote
	}
	return nil
}

func (f *fakeClient) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeClient) ListContent(context.Context) ([]*catalog.ContentItem, error) {
	if err := f.enter("ListContent"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*catalog.ContentItem, 0, len(f.content))
	for k, v := range f.content {
		out = append(out, &catalog.ContentItem{Key: k, Value: v})
	}
	return out, nil
}

func (f *fakeClient) UpsertContent(_ context.Context, key, value string) (*catalog.ContentItem, error) {
	if err := f.enter("UpsertContent"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content[key] = value
	return &catalog.ContentItem{Key: key, Value: value, UpdatedAt: time.Now()}, nil
}

func (f *fakeClient) ListProducts(context.Context) ([]*catalog.Product, error) {
	if err := f.enter("ListProducts"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*catalog.Product, len(f.products))
	for i, p := range f.products {
		out[i] = p.Clone()
	}
	return out, nil
}

func (f *fakeClient) insertLocked(draft catalog.ProductDraft) *catalog.Product {
	f.nextID++
	draft.Normalize()
	p := draft.ToProduct(fmt.Sprintf("p%d", f.nextID), time.Now())
	f.products = append([]*catalog.Product{p}, f.products...)
	return p.Clone()
}

func (f *fakeClient) InsertProduct(_ context.Context, draft catalog.ProductDraft) (*catalog.Product, error) {
	if err := f.enter("InsertProduct"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertLocked(draft), nil
}

func (f *fakeClient) InsertProducts(_ context.Context, drafts []catalog.ProductDraft) ([]*catalog.Product, error) {
	if err := f.enter("InsertProducts"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	out := make([]*catalog.Product, len(drafts))
	for i, d := range drafts {
		out[i] = f.insertLocked(d)
	}
	echo := f.echoInserts
	f.mu.Unlock()

	if echo != nil {
		echo(out)
	}
	return out, nil
}

func (f *fakeClient) UpdateProduct(_ context.Context, id string, patch catalog.ProductPatch) (*catalog.Product, error) {
	if err := f.enter("UpdateProduct"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.ID == id {
			patch.Apply(p)
			p.UpdatedAt = time.Now()
			return p.Clone(), nil
		}
	}
	return nil, errRemote
}

func (f *fakeClient) DeleteProduct(_ context.Context, id string) error {
	if err := f.enter("DeleteProduct"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.products {
		if p.ID == id {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return nil
		}
	}
	return errRemote
}

func (f *fakeClient) GetSettings(context.Context) (*catalog.WebsiteSettings, error) {
	if err := f.enter("GetSettings"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settings == nil {
		return nil, nil
	}
	cp := *f.settings
	return &cp, nil
}

func (f *fakeClient) SaveSettings(_ context.Context, patch catalog.SettingsPatch) (*catalog.WebsiteSettings, error) {
	if err := f.enter("SaveSettings"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settings == nil {
		f.settings = &catalog.WebsiteSettings{ID: "s1", SiteTitle: catalog.DefaultSiteTitle}
	}
	patch.Apply(f.settings)
	cp := *f.settings
	return &cp, nil
}

// Subscribe hands out the shared feed; tests push events into f.feed.
func (f *fakeClient) Subscribe(ctx context.Context, _ ...events.Table) (<-chan events.ChangeEvent, error) {
	if err := f.enter("Subscribe"); err != nil {
		return nil, err
	}
	out := make(chan events.ChangeEvent)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-f.feed:
				select {
				case out <- evt:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (f *fakeClient) Session(context.Context) (*remote.Session, error) { return nil, nil }

func (f *fakeClient) SignIn(context.Context, string, string) (*remote.Session, error) {
	return nil, remote.ErrInvalidCredentials
}

func (f *fakeClient) SignUp(context.Context, string, string) error { return nil }

func (f *fakeClient) SignOut(context.Context) error { return nil }

func (f *fakeClient) OnAuthChange(func(remote.AuthEvent)) func() { return func() {} }
