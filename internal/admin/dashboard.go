package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/harrylevesque/ecoadmin/internal/api"
	"github.com/harrylevesque/ecoadmin/internal/models"
	"github.com/harrylevesque/ecoadmin/internal/utils"
)

// ErrSectionNotConfigured is returned for dashboard sections with no screen.
var ErrSectionNotConfigured = errors.New("section not configured yet")

// Lister fetches a resource list.
type Lister interface {
	FetchList(ctx context.Context, ep api.Endpoint) (models.Collection, error)
}

// Section is one dashboard tile.
type Section struct {
	Label  string
	Screen string
	// Counted is false for tiles without a record count, or when the count
	// could not be fetched (Err is then set).
	Counted bool
	Count   int
	Err     error
}

var sections = []Section{
	{Label: "Analytics", Screen: ScreenAnalytics},
	{Label: "Users", Screen: ScreenUsers},
	{Label: "Bookings", Screen: ScreenBookings},
	{Label: "Partners", Screen: ScreenPartners},
	{Label: "Requests", Screen: ScreenRequests},
	{Label: "Itineraries", Screen: ScreenItineraries},
	{Label: "Locations", Screen: ScreenLocations},
	{Label: "Feedback", Screen: ScreenFeedback},
}

// maxCountFetches bounds concurrent count requests.
const maxCountFetches = 4

// Dashboard is the admin landing screen.
type Dashboard struct {
	catalog *Catalog
	lister  Lister
	nav     Navigator
	logger  *slog.Logger
}

// NewDashboard wires the dashboard. logger may be nil.
func NewDashboard(catalog *Catalog, lister Lister, nav Navigator, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = utils.Discard()
	}
	return &Dashboard{catalog: catalog, lister: lister, nav: nav, logger: logger}
}

// Sections returns the tiles in display order, without counts.
func (d *Dashboard) Sections() []Section {
	return append([]Section(nil), sections...)
}

// Open navigates to the screen behind a section label.
func (d *Dashboard) Open(label string) error {
	for _, s := range sections {
		if s.Label == label {
			d.nav.NavigateTo(s.Screen, nil)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrSectionNotConfigured, label)
}

// Logout returns to the login screen.
func (d *Dashboard) Logout() {
	d.nav.NavigateTo(ScreenLogin, nil)
}

// Counts fetches every countable section's list concurrently. A failed
// section keeps Counted=false with Err set; the first such error is also
// returned.
func (d *Dashboard) Counts(ctx context.Context) ([]Section, error) {
	out := d.Sections()
	var g errgroup.Group
	g.SetLimit(maxCountFetches)
	for i := range out {
		def, ok := d.catalog.Definition(out[i].Screen)
		if !ok || def.Single {
			continue
		}
		g.Go(func() error {
			items, err := d.lister.FetchList(ctx, def.List)
			if err != nil {
				out[i].Err = err
				d.logger.Warn("dashboard count failed", "section", out[i].Label, "error", err)
				return fmt.Errorf("%s: %w", out[i].Label, err)
			}
			out[i].Count = len(items)
			out[i].Counted = true
			return nil
		})
	}
	err := g.Wait()
	return out, err
}
