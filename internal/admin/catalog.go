// Package admin defines the EcoTrails admin screens on top of package
// resource, plus the login and dashboard flows that lead to them.
package admin

import (
	"strings"

	"github.com/harrylevesque/ecoadmin/internal/api"
	"github.com/harrylevesque/ecoadmin/internal/config"
	"github.com/harrylevesque/ecoadmin/internal/models"
	"github.com/harrylevesque/ecoadmin/internal/resource"
)

// Screen names used with Navigator.NavigateTo.
const (
	ScreenLogin       = "Login"
	ScreenDashboard   = "AdminDashboard"
	ScreenUsers       = "UsersAdmin"
	ScreenBookings    = "BookingsAdmin"
	ScreenPartners    = "PartnersAdmin"
	ScreenRequests    = "ItineraryRequestsAdmin"
	ScreenItineraries = "ItinerariesAdmin"
	ScreenLocations   = "LocationAdmin"
	ScreenFeedback    = "FeedbackManagement"
	ScreenAnalytics   = "AdminAnalytics"
)

// Catalog holds the definition of every resource screen for one set of hosts.
type Catalog struct {
	hosts   config.Hosts
	screens []string
	defs    map[string]resource.Definition
}

// NewCatalog builds the screen definitions against hosts.
func NewCatalog(hosts config.Hosts) *Catalog {
	c := &Catalog{hosts: hosts, defs: make(map[string]resource.Definition)}
	c.add(ScreenBookings, bookings(hosts))
	c.add(ScreenItineraries, itineraries(hosts))
	c.add(ScreenRequests, itineraryRequests(hosts))
	c.add(ScreenUsers, users(hosts))
	c.add(ScreenPartners, partners(hosts))
	c.add(ScreenLocations, locations(hosts))
	c.add(ScreenFeedback, feedback(hosts))
	c.add(ScreenAnalytics, analytics(hosts))
	return c
}

func (c *Catalog) add(screen string, def resource.Definition) {
	c.screens = append(c.screens, screen)
	c.defs[screen] = def
}

// Screens lists the resource screens in menu order.
func (c *Catalog) Screens() []string {
	return append([]string(nil), c.screens...)
}

// Definition returns the definition for a screen name ("BookingsAdmin") or a
// resource name ("bookings"), case-insensitively.
func (c *Catalog) Definition(name string) (resource.Definition, bool) {
	for _, screen := range c.screens {
		def := c.defs[screen]
		if strings.EqualFold(screen, name) || strings.EqualFold(def.Name, name) {
			return def, true
		}
	}
	return resource.Definition{}, false
}

// LoginURL is the admin login endpoint on the users app.
func (c *Catalog) LoginURL() string {
	return api.NewEndpoint("login", c.hosts.Users, "/user/login").Base
}

func bookings(h config.Hosts) resource.Definition {
	ep := api.NewEndpoint("bookings", h.Bookings, "/admin/bookings")
	return resource.Definition{
		Name:          "bookings",
		Title:         "Bookings",
		List:          ep,
		Detail:        &ep,
		Mutate:        ep,
		IDField:       "id",
		StatusField:   "status",
		Filters:       []string{"Confirmed", "Pending", "Cancelled"},
		Columns:       []string{"id", "userId", "flightName", "date", "status"},
		Edit:          resource.EditStatus,
		Rules:         []resource.Rule{resource.Required("status", "Status")},
		StatusActions: []string{"Confirmed", "Pending", "Cancelled"},
		StatusPayload: pascalStatus,
	}
}

func itineraries(h config.Hosts) resource.Definition {
	ep := api.NewEndpoint("itineraries", h.Itineraries, "/admin/itineraries")
	return resource.Definition{
		Name:        "itineraries",
		Title:       "Itineraries",
		List:        ep,
		Mutate:      ep,
		IDField:     "id",
		StatusField: "status",
		Filters:     []string{"Published", "Draft", "Approved", "Declined"},
		Columns:     []string{"id", "name", "durationDays", "status"},
		Edit:        resource.EditFull,
		Creatable:   true,
		Deletable:   true,
		AddDefaults: models.Record{"name": "", "durationDays": "", "status": "Draft", "description": "", "itineraryJson": ""},
		Rules: []resource.Rule{
			resource.Required("name", "Name"),
			resource.Numeric("durationDays", "Duration Days"),
			resource.Required("status", "Status"),
		},
		CreatePayload: func(d models.Record) any {
			return map[string]any{
				"Name":          d.String("name"),
				"DurationDays":  number(d, "durationDays"),
				"Status":        d.String("status"),
				"Description":   orNil(d, "description"),
				"ItineraryJson": orNil(d, "itineraryJson"),
			}
		},
		UpdatePayload: func(orig, d models.Record) any {
			return map[string]any{
				"Id":           orig.Value("id"),
				"Name":         d.String("name"),
				"DurationDays": number(d, "durationDays"),
				"Status":       d.String("status"),
				"Description":  orNil(d, "description"),
			}
		},
	}
}

func itineraryRequests(h config.Hosts) resource.Definition {
	ep := api.NewEndpoint("itinerary-requests", h.Itineraries, "/admin/itinerary-requests")
	return resource.Definition{
		Name:          "requests",
		Title:         "Itinerary Requests",
		List:          ep,
		Detail:        &ep,
		Mutate:        ep,
		IDField:       "id",
		StatusField:   "status",
		Filters:       []string{"Pending", "Reviewed"},
		Columns:       []string{"id", "user", "travelDates", "travelType", "status"},
		Edit:          resource.EditFull,
		Rules:         []resource.Rule{resource.Required("status", "Status")},
		StatusActions: []string{"Reviewed"},
		// The full update sends the loaded detail with the edited fields on top.
		UpdatePayload: func(orig, d models.Record) any {
			body := orig.Clone()
			for k, v := range d {
				body[k] = v
			}
			return body
		},
	}
}

func users(h config.Hosts) resource.Definition {
	ep := api.NewEndpoint("users", h.Users, "/admin/users")
	return resource.Definition{
		Name:        "users",
		Title:       "Users",
		List:        ep,
		Mutate:      ep,
		IDField:     "id",
		StatusField: "status",
		Filters:     []string{"Active", "Inactive", "Pending"},
		Columns:     []string{"id", "firstName", "lastName", "email", "role", "status"},
		Edit:        resource.EditFull,
		Deletable:   true,
		Rules:       []resource.Rule{resource.Required("status", "Status")},
		UpdatePayload: func(_, d models.Record) any {
			return map[string]any{"role": d.Value("role"), "status": d.Value("status")}
		},
	}
}

func partners(h config.Hosts) resource.Definition {
	ep := api.NewEndpoint("partners", h.Partners, "/admin/partner-applications")
	return resource.Definition{
		Name:          "partners",
		Title:         "Partner Applications",
		List:          ep,
		Detail:        &ep,
		Mutate:        ep,
		IDField:       "id",
		StatusField:   "status",
		Filters:       []string{"Pending", "Approved", "Rejected"},
		Columns:       []string{"id", "fullName", "businessName", "typeOfBusiness", "location", "status", "submittedAt"},
		Edit:          resource.EditFull,
		StatusActions: []string{"Approved", "Rejected"},
		StatusPayload: pascalStatus,
		Rules: []resource.Rule{
			resource.Required("fullName", "Full Name"),
			resource.Required("emailAddress", "Email Address"),
		},
		UpdatePayload: func(orig, d models.Record) any {
			return map[string]any{
				"Id":               orig.Value("id"),
				"FullName":         d.Value("fullName"),
				"EmailAddress":     d.Value("emailAddress"),
				"BusinessName":     d.Value("businessName"),
				"TypeOfBusiness":   d.Value("typeOfBusiness"),
				"Location":         d.Value("location"),
				"BriefDescription": d.Value("briefDescription"),
				"Status":           d.Value("status"),
				"SubmittedAt":      orig.Value("submittedAt"),
			}
		},
	}
}

func locations(h config.Hosts) resource.Definition {
	return resource.Definition{
		Name:  "locations",
		Title: "Locations",
		// The admin app lists from the public endpoint and writes to the admin one.
		List:        api.NewEndpoint("locations", h.Users, "/locations").WithEnvelope("locations"),
		Mutate:      api.NewEndpoint("locations", h.Users, "/admin/locations"),
		IDField:     "locationId",
		Columns:     []string{"locationId", "name", "description"},
		Edit:        resource.EditFull,
		Creatable:   true,
		Deletable:   true,
		AddDefaults: models.Record{"name": "", "description": ""},
		Rules:       []resource.Rule{resource.Required("name", "Name")},
		CreatePayload: func(d models.Record) any {
			return map[string]any{"Name": d.String("name"), "Description": d.String("description")}
		},
		UpdatePayload: func(orig, d models.Record) any {
			return map[string]any{
				"LocationId":  orig.Value("locationId"),
				"Name":        d.String("name"),
				"Description": d.String("description"),
			}
		},
	}
}

func feedback(h config.Hosts) resource.Definition {
	return resource.Definition{
		Name:    "feedback",
		Title:   "Feedback",
		List:    api.NewEndpoint("feedback", h.Users, "/admin/feedback").WithTextFallback(),
		IDField: "id",
		Columns: []string{"id", "userId", "message", "createdAt"},
	}
}

func analytics(h config.Hosts) resource.Definition {
	return resource.Definition{
		Name:   "analytics",
		Title:  "Analytics",
		List:   api.NewEndpoint("analytics", h.Partners, "/admin/analytics"),
		Single: true,
		Columns: []string{
			"totalPlatformRevenue", "totalCommissionEarned", "totalPartnerPayouts", "totalBookings",
		},
	}
}

func pascalStatus(s string) any {
	return map[string]any{"Status": s}
}

// number sends a numeric draft field as a JSON number. Rules have already
// checked that it parses.
func number(d models.Record, key string) any {
	if f, ok := d.Number(key); ok {
		return f
	}
	return nil
}

func orNil(d models.Record, key string) any {
	if s := d.String(key); s != "" {
		return s
	}
	return nil
}
