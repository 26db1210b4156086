package tui

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harrylevesque/ecoadmin/internal/admin"
	"github.com/harrylevesque/ecoadmin/internal/api"
	"github.com/harrylevesque/ecoadmin/internal/config"
	"github.com/harrylevesque/ecoadmin/internal/devserver"
	"github.com/harrylevesque/ecoadmin/internal/models"
	"github.com/harrylevesque/ecoadmin/internal/resource"
)

const (
	adminEmail    = "admin@ecotrails.dev"
	adminPassword = "secret"
)

func newConsole(t *testing.T) Model {
	t.Helper()
	seed, err := devserver.DefaultSeed()
	if err != nil {
		t.Fatalf("DefaultSeed: %v", err)
	}
	store, accounts, err := devserver.Populate(seed, adminEmail, adminPassword)
	if err != nil {
		t.Fatalf("Populate: %v", err)
	}
	srv := httptest.NewServer(devserver.New(store, accounts).NewRouter())
	t.Cleanup(srv.Close)
	hosts := config.Hosts{}.All(srv.URL + devserver.APIPrefix)
	return New(Options{Backend: api.NewClient(), Catalog: admin.NewCatalog(hosts), Timeout: 5 * time.Second})
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends keys and drops any command they return.
func press(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

// await sends k and runs the requests it starts until the console is idle.
func await(t *testing.T, m Model, k string) Model {
	t.Helper()
	next, cmd := m.Update(key(k))
	m = next.(Model)
	for cmd != nil {
		msg := cmd()
		switch msg.(type) {
		case loginMsg, countsMsg, resultMsg:
			next, cmd = m.Update(msg)
			m = next.(Model)
		default:
			cmd = nil
		}
	}
	return m
}

func login(t *testing.T, m Model, email, password string) Model {
	t.Helper()
	m = press(m, email, "tab", password)
	return await(t, m, "enter")
}

func loggedIn(t *testing.T) Model {
	t.Helper()
	m := login(t, newConsole(t), adminEmail, adminPassword)
	if m.Screen() != admin.ScreenDashboard {
		t.Fatalf("expected dashboard after login, got %q (status %q)", m.Screen(), m.status)
	}
	return m
}

// open moves the dashboard cursor to label and opens it.
func open(t *testing.T, m Model, label string) Model {
	t.Helper()
	for m.cursor > 0 {
		m = press(m, "up")
	}
	for m.sections[m.cursor].Label != label {
		m = press(m, "down")
	}
	return await(t, m, "enter")
}

func snapshot(t *testing.T, m Model) resource.State {
	t.Helper()
	mgr, ok := m.Manager(m.Screen())
	if !ok {
		t.Fatalf("no manager for %q", m.Screen())
	}
	return mgr.Snapshot()
}

func TestLoginRejections(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		want     string
	}{
		{"empty", "", "", "Please enter both email and password"},
		{"wrong password", adminEmail, "nope", "Invalid email or password"},
		{"not admin", "guide@ecotrails.dev", "guide", admin.ErrNotAdmin.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newConsole(t)
			if tt.email != "" {
				m = press(m, tt.email)
			}
			m = press(m, "tab")
			if tt.password != "" {
				m = press(m, tt.password)
			}
			m = await(t, m, "enter")
			if m.Screen() != admin.ScreenLogin {
				t.Fatalf("expected to stay on login, got %q", m.Screen())
			}
			if !strings.Contains(m.status, tt.want) {
				t.Errorf("status %q does not mention %q", m.status, tt.want)
			}
		})
	}
}

func TestLoginLoadsDashboardCounts(t *testing.T) {
	m := loggedIn(t)
	counts := map[string]int{}
	for _, s := range m.sections {
		if s.Counted {
			counts[s.Label] = s.Count
		}
	}
	if counts["Users"] != 3 || counts["Bookings"] != 3 || counts["Locations"] != 2 {
		t.Errorf("unexpected counts %v", counts)
	}
	if !strings.Contains(m.View(), "Bookings (3)") {
		t.Errorf("dashboard view lacks counts:\n%s", m.View())
	}

	m = await(t, m, "l")
	if m.Screen() != admin.ScreenLogin || m.password.Value() != "" {
		t.Errorf("logout should return to a cleared login, got %q", m.Screen())
	}
}

func TestBookingStatusAction(t *testing.T) {
	m := open(t, loggedIn(t), "Bookings")
	if m.Screen() != admin.ScreenBookings {
		t.Fatalf("expected bookings screen, got %q", m.Screen())
	}
	if n := len(snapshot(t, m).Filtered); n != 3 {
		t.Fatalf("expected 3 bookings, got %d", n)
	}

	m = press(m, "down")
	m = await(t, m, "enter")
	view, ok := snapshot(t, m).Modal.(resource.Viewing)
	if !ok || view.ID != "2" {
		t.Fatalf("expected booking 2 open, got %#v", snapshot(t, m).Modal)
	}

	m = await(t, m, "1")
	st := snapshot(t, m)
	if _, ok := st.Modal.(resource.None); !ok {
		t.Fatalf("expected modal closed after status change, got %s", st.Modal.Name())
	}
	rec, _ := st.Items.Find("id", "2")
	if rec.String("status") != "Confirmed" {
		t.Errorf("expected booking 2 confirmed, got %v", rec)
	}
	if st.Notice == "" {
		t.Error("expected a saved notice")
	}

	m = press(m, "esc")
	if m.Screen() != admin.ScreenDashboard {
		t.Errorf("esc should go back to the dashboard, got %q", m.Screen())
	}
}

func TestFilterAndQuery(t *testing.T) {
	m := open(t, loggedIn(t), "Bookings")

	m = press(m, "f")
	st := snapshot(t, m)
	if st.FilterKey != "Confirmed" || len(st.Filtered) != 1 {
		t.Fatalf("expected the Confirmed filter with one row, got %q %d", st.FilterKey, len(st.Filtered))
	}
	m = press(m, "f", "f", "f")
	if st := snapshot(t, m); !resource.IsAll(st.FilterKey) || len(st.Filtered) != 3 {
		t.Fatalf("expected filter to wrap to All, got %q %d", st.FilterKey, len(st.Filtered))
	}

	m = press(m, "/", `userId == "u-101"`, "enter")
	st = snapshot(t, m)
	if len(st.Filtered) != 1 || st.Filtered[0].ID("id") != "2" {
		t.Fatalf("query should leave booking 2, got %v", st.Filtered)
	}

	m = press(m, "/", "status ==", "enter")
	if m.status == "" {
		t.Error("expected a compile error for a broken query")
	}
	if snapshot(t, m).Query != `userId == "u-101"` {
		t.Error("a broken query should keep the previous one")
	}
}

func TestItineraryAddEditDelete(t *testing.T) {
	m := open(t, loggedIn(t), "Itineraries")
	before := len(snapshot(t, m).Items)

	m = press(m, "a")
	if _, ok := snapshot(t, m).Modal.(resource.Adding); !ok {
		t.Fatalf("expected adding, got %s", snapshot(t, m).Modal.Name())
	}
	m = press(m, "enter", "Tea Trail", "enter")
	m = await(t, m, "ctrl+s")
	if !strings.Contains(m.status, "Duration Days") {
		t.Fatalf("expected a validation error, got %q", m.status)
	}
	add, ok := snapshot(t, m).Modal.(resource.Adding)
	if !ok || add.Draft.String("name") != "Tea Trail" {
		t.Fatalf("draft should survive a failed save, got %#v", snapshot(t, m).Modal)
	}

	m = press(m, "down", "enter", "4", "enter")
	m = await(t, m, "ctrl+s")
	st := snapshot(t, m)
	if len(st.Items) != before+1 {
		t.Fatalf("expected %d itineraries after create, got %d (status %q)", before+1, len(st.Items), m.status)
	}

	idx := -1
	for i, rec := range st.Filtered {
		if rec.String("name") == "Tea Trail" {
			idx = i
		}
	}
	if idx < 0 {
		t.Fatal("created itinerary not listed")
	}
	for m.cursor < idx {
		m = press(m, "down")
	}
	m = await(t, m, "enter")
	m = press(m, "d")
	if _, ok := snapshot(t, m).Modal.(resource.ConfirmingDelete); !ok {
		t.Fatalf("expected delete confirmation, got %s", snapshot(t, m).Modal.Name())
	}
	m = press(m, "n")
	if _, ok := snapshot(t, m).Modal.(resource.Viewing); !ok {
		t.Fatalf("n should return to the record, got %s", snapshot(t, m).Modal.Name())
	}
	m = press(m, "d")
	m = await(t, m, "y")
	if n := len(snapshot(t, m).Items); n != before {
		t.Errorf("expected %d itineraries after delete, got %d", before, n)
	}
}

func TestAnalyticsScreen(t *testing.T) {
	m := open(t, loggedIn(t), "Analytics")
	st := snapshot(t, m)
	if len(st.Items) != 1 {
		t.Fatalf("expected one analytics record, got %d", len(st.Items))
	}
	if !strings.Contains(m.View(), "totalPlatformRevenue") {
		t.Errorf("analytics view lacks fields:\n%s", m.View())
	}
	m = press(m, "enter", "e")
	if _, ok := snapshot(t, m).Modal.(resource.None); !ok {
		t.Error("analytics is read-only")
	}
}

func TestStatusForKey(t *testing.T) {
	def := resource.Definition{StatusActions: []string{"Approved", "Rejected"}}
	tests := []struct {
		key  string
		want string
		ok   bool
	}{
		{"1", "Approved", true},
		{"2", "Rejected", true},
		{"3", "", false},
		{"A", "Approved", true},
		{"R", "Rejected", true},
		{"r", "", false},
		{"X", "", false},
	}
	for _, tt := range tests {
		got, ok := statusForKey(def, tt.key)
		if got != tt.want || ok != tt.ok {
			t.Errorf("statusForKey(%q) = %q, %v; want %q, %v", tt.key, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDraftFields(t *testing.T) {
	def := resource.Definition{IDField: "id", Columns: []string{"id", "name", "status"}}
	draft := models.Record{"id": "1", "status": "Draft", "name": "x", "zeta": 1, "alpha": 2}
	got := strings.Join(draftFields(def, draft), ",")
	if got != "name,status,alpha,zeta" {
		t.Errorf("draftFields = %s", got)
	}
}
