package resource

import (
	"context"
	"sync"

	"github.com/harrylevesque/ecoadmin/internal/api"
	"github.com/harrylevesque/ecoadmin/internal/models"
)

// fakeTransport records calls and answers from configurable hooks.
type fakeTransport struct {
	mu       sync.Mutex
	calls    []string
	payloads []any
	fetches  int

	fetch     func(ctx context.Context, n int) (models.Collection, error)
	detail    func(id string) (models.Record, error)
	onMutate  func(call string) error
	mutateErr error
}

func (f *fakeTransport) record(call string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	f.payloads = append(f.payloads, payload)
}

func (f *fakeTransport) mutation(call string, payload any) error {
	f.record(call, payload)
	if f.onMutate != nil {
		return f.onMutate(call)
	}
	return f.mutateErr
}

func (f *fakeTransport) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeTransport) FetchList(ctx context.Context, ep api.Endpoint) (models.Collection, error) {
	f.mu.Lock()
	f.fetches++
	n := f.fetches
	f.calls = append(f.calls, "list")
	f.payloads = append(f.payloads, nil)
	f.mu.Unlock()
	if f.fetch == nil {
		return models.Collection{}, nil
	}
	return f.fetch(ctx, n)
}

func (f *fakeTransport) LoadDetail(_ context.Context, _ api.Endpoint, id string) (models.Record, error) {
	f.record("detail "+id, nil)
	if f.detail == nil {
		return models.Record{"id": id}, nil
	}
	return f.detail(id)
}

func (f *fakeTransport) Create(_ context.Context, _ api.Endpoint, payload any) (models.Record, error) {
	return models.Record{}, f.mutation("create", payload)
}

func (f *fakeTransport) Update(_ context.Context, _ api.Endpoint, id string, payload any) error {
	return f.mutation("update "+id, payload)
}

func (f *fakeTransport) UpdateStatus(_ context.Context, _ api.Endpoint, id string, payload any) error {
	return f.mutation("status "+id, payload)
}

func (f *fakeTransport) Delete(_ context.Context, _ api.Endpoint, id string) error {
	return f.mutation("delete "+id, nil)
}

func staticList(c models.Collection) func(context.Context, int) (models.Collection, error) {
	return func(context.Context, int) (models.Collection, error) { return c, nil }
}
