package resource

import (
	"strings"

	"github.com/harrylevesque/ecoadmin/internal/api"
	"github.com/harrylevesque/ecoadmin/internal/models"
)

// EditMode says how an edited draft is written back.
type EditMode int

const (
	// EditNone makes the screen read-only.
	EditNone EditMode = iota
	// EditFull PUTs the whole payload to {base}/{id}.
	EditFull
	// EditStatus PUTs only the status to {base}/{id}/status.
	EditStatus
)

// Definition configures one admin screen.
type Definition struct {
	Name  string
	Title string

	List api.Endpoint
	// Detail is set when selecting a row loads the full record with a second GET.
	Detail *api.Endpoint
	Mutate api.Endpoint

	IDField     string
	StatusField string
	Filters     []string
	// Columns lists the fields shown in list views, in order.
	Columns []string
	// Single marks screens whose list is one summary object.
	Single bool

	Edit          EditMode
	Creatable     bool
	Deletable     bool
	AddDefaults   models.Record
	Rules         []Rule
	StatusActions []string

	// CreatePayload and UpdatePayload shape the request body from the draft.
	// Nil sends the draft as is.
	CreatePayload func(draft models.Record) any
	UpdatePayload func(original, draft models.Record) any
	// StatusPayload shapes the status-only body. Nil sends {"status": s}.
	StatusPayload func(status string) any
}

func (d Definition) idField() string {
	if d.IDField == "" {
		return "id"
	}
	return models.Canonical(d.IDField)
}

func (d Definition) statusField() string {
	if d.StatusField == "" {
		return "status"
	}
	return models.Canonical(d.StatusField)
}

func (d Definition) createPayload(draft models.Record) any {
	if d.CreatePayload == nil {
		return draft
	}
	return d.CreatePayload(draft)
}

func (d Definition) updatePayload(original, draft models.Record) any {
	if d.UpdatePayload == nil {
		return draft
	}
	return d.UpdatePayload(original, draft)
}

func (d Definition) statusPayload(status string) any {
	if d.StatusPayload == nil {
		return map[string]any{"status": status}
	}
	return d.StatusPayload(status)
}

// HasFilter reports whether key is one of the screen's filters.
func (d Definition) HasFilter(key string) bool {
	if IsAll(key) {
		return true
	}
	for _, f := range d.Filters {
		if strings.EqualFold(f, strings.TrimSpace(key)) {
			return true
		}
	}
	return false
}

// StatusAction returns the canonical spelling of a supported status action.
func (d Definition) StatusAction(status string) (string, bool) {
	for _, a := range d.StatusActions {
		if strings.EqualFold(a, strings.TrimSpace(status)) {
			return a, true
		}
	}
	return "", false
}
