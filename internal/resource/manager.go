// Package resource holds the list/modal state of one admin screen: fetching,
// filtering, the modal state machine and mutations followed by a re-fetch.
package resource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/harrylevesque/ecoadmin/internal/api"
	"github.com/harrylevesque/ecoadmin/internal/models"
	"github.com/harrylevesque/ecoadmin/internal/utils"
)

var (
	// ErrDeleteNotConfirmed is returned by ConfirmDelete outside ConfirmingDelete.
	ErrDeleteNotConfirmed = errors.New("delete has not been confirmed")
	// ErrUnsupported is returned for actions the screen does not offer.
	ErrUnsupported = errors.New("action not supported by this screen")
	// ErrSuperseded is returned when a newer request replaced this one before
	// it finished. Its result was discarded.
	ErrSuperseded = errors.New("request superseded by a newer one")
	// ErrUnknownRecord is returned when an id is not in the collection.
	ErrUnknownRecord = errors.New("record not found")
)

// Transport is the part of api.Client a Manager needs.
type Transport interface {
	FetchList(ctx context.Context, ep api.Endpoint) (models.Collection, error)
	LoadDetail(ctx context.Context, ep api.Endpoint, id string) (models.Record, error)
	Create(ctx context.Context, ep api.Endpoint, payload any) (models.Record, error)
	Update(ctx context.Context, ep api.Endpoint, id string, payload any) error
	UpdateStatus(ctx context.Context, ep api.Endpoint, id string, payload any) error
	Delete(ctx context.Context, ep api.Endpoint, id string) error
}

// State is a point-in-time copy of a Manager for rendering. Its collections
// are never modified after being handed out.
type State struct {
	Title     string
	Items     models.Collection
	Filtered  models.Collection
	FilterKey string
	Query     string
	Modal     Modal
	Loading   bool
	Saving    bool
	Err       error
	Notice    string
}

// Option configures a Manager.
type Option func(*Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Manager owns the state of one screen. It is safe for concurrent use; no
// lock is held while a request is in flight.
type Manager struct {
	def       Definition
	transport Transport
	logger    *slog.Logger

	mu          sync.Mutex
	items       models.Collection
	filterKey   string
	query       *Query
	filtered    models.Collection
	modal       ModalController
	loading     bool
	saving      bool
	err         error
	notice      string
	fetchSeq      uint64
	cancelFetch   context.CancelFunc
	detailSeq     uint64
	detailPending bool
}

// NewManager creates a manager with an empty collection and no modal.
func NewManager(def Definition, transport Transport, opts ...Option) *Manager {
	m := &Manager{
		def:       def,
		transport: transport,
		logger:    utils.Discard(),
		items:     models.Collection{},
		filtered:  models.Collection{},
		filterKey: FilterAll,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.modal.Reset()
	return m
}

func (m *Manager) Definition() Definition {
	return m.def
}

// Snapshot copies the current state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{
		Title:     m.def.Title,
		Items:     m.items,
		Filtered:  m.filtered,
		FilterKey: m.filterKey,
		Query:     m.query.String(),
		Modal:     m.modal.Current(),
		Loading:   m.loading,
		Saving:    m.saving,
		Err:       m.err,
		Notice:    m.notice,
	}
}

// recompute must be called with mu held.
func (m *Manager) recompute() {
	m.filtered = Select(ApplyFilterOn(m.items, m.def.statusField(), m.filterKey), m.query)
}

// Mount resets the modal and fetches the list, as when a screen opens.
func (m *Manager) Mount(ctx context.Context) error {
	m.mu.Lock()
	m.modal.Reset()
	m.notice = ""
	m.err = nil
	m.mu.Unlock()
	return m.Refresh(ctx)
}

// Refresh fetches the list. Any fetch still in flight is cancelled and its
// result ignored, so the collection always reflects the latest Refresh.
// On failure the previous collection is kept and the error exposed.
func (m *Manager) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m.mu.Lock()
	if m.cancelFetch != nil {
		m.cancelFetch()
	}
	m.fetchSeq++
	seq := m.fetchSeq
	m.cancelFetch = cancel
	m.loading = true
	m.mu.Unlock()

	items, err := m.transport.FetchList(ctx, m.def.List)

	m.mu.Lock()
	defer m.mu.Unlock()
	if seq != m.fetchSeq {
		m.logger.Debug("discarding superseded fetch", "screen", m.def.Name, "seq", seq, "latest", m.fetchSeq)
		return ErrSuperseded
	}
	m.cancelFetch = nil
	m.loading = m.detailPending
	if err != nil {
		m.err = err
		m.logger.Warn("fetch failed", "screen", m.def.Name, "error", err)
		return err
	}
	m.items = items
	m.err = nil
	m.recompute()
	return nil
}

// SetFilter changes the filter key and recomputes the visible list.
func (m *Manager) SetFilter(key string) error {
	if !m.def.HasFilter(key) {
		return fmt.Errorf("%w: filter %q", ErrUnsupported, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filterKey = FilterAll
	if !IsAll(key) {
		for _, f := range m.def.Filters {
			if strings.EqualFold(f, key) {
				m.filterKey = f
			}
		}
	}
	m.recompute()
	return nil
}

// CycleFilter moves to the next filter after the current one, wrapping to All.
func (m *Manager) CycleFilter() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := append([]string{FilterAll}, m.def.Filters...)
	next := 0
	for i, k := range keys {
		if strings.EqualFold(k, m.filterKey) {
			next = (i + 1) % len(keys)
		}
	}
	m.filterKey = keys[next]
	m.recompute()
	return m.filterKey
}

// SetQuery narrows the visible list with an expression; empty clears it.
// A query that fails to compile leaves the previous one in place.
func (m *Manager) SetQuery(src string) error {
	var q *Query
	if strings.TrimSpace(src) != "" {
		var err error
		if q, err = CompileQuery(src); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.query = q
	m.recompute()
	return nil
}

// Select opens the record id. Screens with a detail endpoint load it first;
// if that fails, or a newer Select started meanwhile, the modal stays closed.
func (m *Manager) Select(ctx context.Context, id string) error {
	m.mu.Lock()
	if _, ok := m.modal.Current().(None); !ok {
		defer m.mu.Unlock()
		return m.modal.invalid("view")
	}
	if m.def.Detail == nil {
		defer m.mu.Unlock()
		rec, ok := m.items.Find(m.def.idField(), id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownRecord, id)
		}
		return m.modal.View(id, rec)
	}
	m.detailSeq++
	seq := m.detailSeq
	m.detailPending = true
	m.loading = true
	m.mu.Unlock()

	rec, err := m.transport.LoadDetail(ctx, *m.def.Detail, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if seq != m.detailSeq {
		return ErrSuperseded
	}
	m.detailPending = false
	m.loading = m.cancelFetch != nil
	if err != nil {
		m.err = err
		m.logger.Warn("detail load failed", "screen", m.def.Name, "id", id, "error", err)
		return err
	}
	m.err = nil
	return m.modal.View(id, rec)
}

// Edit turns the open record into a draft.
func (m *Manager) Edit() error {
	if m.def.Edit == EditNone {
		return fmt.Errorf("%w: edit", ErrUnsupported)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.modal.Edit()
}

// EditRecord opens a draft for a row without viewing it first.
func (m *Manager) EditRecord(id string) error {
	if m.def.Edit == EditNone {
		return fmt.Errorf("%w: edit", ErrUnsupported)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.items.Find(m.def.idField(), id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRecord, id)
	}
	return m.modal.EditRecord(id, rec)
}

// Add opens an empty draft seeded with the screen's defaults.
func (m *Manager) Add() error {
	if !m.def.Creatable {
		return fmt.Errorf("%w: add", ErrUnsupported)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.modal.Add(m.def.AddDefaults)
}

func (m *Manager) SetField(key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.modal.SetField(key, value)
}

// Cancel backs out of the current modal state. A detail load still in
// flight is abandoned, and its Select returns ErrSuperseded.
func (m *Manager) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	pending := m.detailPending
	m.detailSeq++
	m.detailPending = false
	m.loading = m.cancelFetch != nil
	if _, none := m.modal.Current().(None); none && pending {
		return nil
	}
	return m.modal.Cancel()
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.modal.Close()
}

// Save validates the open draft and writes it. On success the modal closes
// and the list is re-fetched; on failure the draft is kept for another try.
func (m *Manager) Save(ctx context.Context) error {
	m.mu.Lock()
	var (
		call   func(context.Context) error
		action string
	)
	gen := m.modal.Generation()
	switch cur := m.modal.Current().(type) {
	case Adding:
		if err := Check(cur.Draft, m.def.Rules); err != nil {
			m.err = err
			m.mu.Unlock()
			return err
		}
		payload := m.def.createPayload(cur.Draft)
		action = "create"
		call = func(ctx context.Context) error {
			_, err := m.transport.Create(ctx, m.def.Mutate, payload)
			return err
		}
	case Editing:
		if err := Check(cur.Draft, m.def.Rules); err != nil {
			m.err = err
			m.mu.Unlock()
			return err
		}
		switch m.def.Edit {
		case EditFull:
			payload := m.def.updatePayload(cur.Original, cur.Draft)
			action = "update"
			call = func(ctx context.Context) error {
				return m.transport.Update(ctx, m.def.Mutate, cur.ID, payload)
			}
		case EditStatus:
			payload := m.def.statusPayload(cur.Draft.String(m.def.statusField()))
			action = "update status"
			call = func(ctx context.Context) error {
				return m.transport.UpdateStatus(ctx, m.def.Mutate, cur.ID, payload)
			}
		default:
			m.mu.Unlock()
			return fmt.Errorf("%w: edit", ErrUnsupported)
		}
	default:
		defer m.mu.Unlock()
		return m.modal.invalid("save")
	}
	m.mu.Unlock()
	return m.mutate(ctx, action, gen, call)
}

// RequestDelete asks for confirmation before deleting the open record.
func (m *Manager) RequestDelete() error {
	if !m.def.Deletable {
		return fmt.Errorf("%w: delete", ErrUnsupported)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.modal.RequestDelete()
}

func (m *Manager) CancelDelete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.modal.CancelDelete()
}

// ConfirmDelete deletes the record awaiting confirmation. Without a prior
// RequestDelete it fails with ErrDeleteNotConfirmed and sends nothing.
func (m *Manager) ConfirmDelete(ctx context.Context) error {
	m.mu.Lock()
	cur, ok := m.modal.Current().(ConfirmingDelete)
	gen := m.modal.Generation()
	m.mu.Unlock()
	if !ok {
		return ErrDeleteNotConfirmed
	}
	return m.mutate(ctx, "delete", gen, func(ctx context.Context) error {
		return m.transport.Delete(ctx, m.def.Mutate, cur.ID)
	})
}

// SetStatus applies one of the screen's status actions to the open record.
func (m *Manager) SetStatus(ctx context.Context, status string) error {
	action, ok := m.def.StatusAction(status)
	if !ok {
		return fmt.Errorf("%w: status %q", ErrUnsupported, status)
	}
	m.mu.Lock()
	var id string
	gen := m.modal.Generation()
	switch cur := m.modal.Current().(type) {
	case Viewing:
		id = cur.ID
	case Editing:
		id = cur.ID
	default:
		defer m.mu.Unlock()
		return m.modal.invalid("change status")
	}
	m.mu.Unlock()
	payload := m.def.statusPayload(action)
	return m.mutate(ctx, "set status "+action, gen, func(ctx context.Context) error {
		return m.transport.UpdateStatus(ctx, m.def.Mutate, id, payload)
	})
}

// mutate runs call, then closes the modal and re-fetches on success. The
// modal is None before the re-fetch is issued, unless it has left the
// generation gen the request was issued from.
func (m *Manager) mutate(ctx context.Context, action string, gen uint64, call func(context.Context) error) error {
	m.mu.Lock()
	m.saving = true
	m.mu.Unlock()

	err := call(ctx)

	m.mu.Lock()
	m.saving = false
	if err != nil {
		m.err = err
		m.mu.Unlock()
		m.logger.Warn("mutation failed", "screen", m.def.Name, "action", action, "error", err)
		return err
	}
	if m.modal.Generation() == gen {
		m.modal.Reset()
	}
	m.err = nil
	m.notice = "Saved: " + action
	m.mu.Unlock()
	m.logger.Info("mutation succeeded", "screen", m.def.Name, "action", action)

	if err := m.Refresh(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		return fmt.Errorf("refreshing after %s: %w", action, err)
	}
	return nil
}
