// Package tui is the terminal front end of the admin console. It renders the
// login, dashboard and resource screens and drives them through package admin
// and package resource.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harrylevesque/ecoadmin/internal/admin"
	"github.com/harrylevesque/ecoadmin/internal/models"
	"github.com/harrylevesque/ecoadmin/internal/resource"
	"github.com/harrylevesque/ecoadmin/internal/utils"
)

// Backend is everything the console sends over the network. *api.Client
// implements it.
type Backend interface {
	resource.Transport
	admin.Authenticator
}

// Options configures a Model.
type Options struct {
	Backend Backend
	Catalog *admin.Catalog
	// Timeout bounds every request. Zero means no timeout.
	Timeout time.Duration
	Logger  *slog.Logger
}

type inputMode int

const (
	inputNone inputMode = iota
	inputField
	inputQuery
)

type loginMsg struct{ err error }

type countsMsg struct {
	sections []admin.Section
	err      error
}

type resultMsg struct {
	screen string
	action string
	err    error
}

// Model is the Bubble Tea model of the console.
type Model struct {
	backend Backend
	catalog *admin.Catalog
	timeout time.Duration
	logger  *slog.Logger

	router   *Router
	login    *admin.LoginFlow
	dash     *admin.Dashboard
	managers map[string]*resource.Manager

	screen     string
	email      textinput.Model
	password   textinput.Model
	loginFocus int
	busy       bool

	sections    []admin.Section
	cursor      int
	fieldCursor int
	mode        inputMode
	input       textinput.Model
	status      string

	width  int
	height int
}

// New builds the console on the login screen.
func New(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = utils.Discard()
	}
	router := NewRouter(admin.ScreenLogin)

	email := textinput.New()
	email.Placeholder = "admin@example.com"
	email.Prompt = "Email:    "
	email.Focus()

	password := textinput.New()
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	input := textinput.New()
	input.Prompt = "> "

	dash := admin.NewDashboard(opts.Catalog, opts.Backend, router, logger)
	return Model{
		backend:  opts.Backend,
		catalog:  opts.Catalog,
		timeout:  opts.Timeout,
		logger:   logger,
		router:   router,
		login:    admin.NewLoginFlow(opts.Backend, opts.Catalog.LoginURL(), router, logger),
		dash:     dash,
		managers: make(map[string]*resource.Manager),
		screen:   admin.ScreenLogin,
		email:    email,
		password: password,
		input:    input,
		sections: dash.Sections(),
	}
}

// Router exposes the console's navigator.
func (m Model) Router() *Router {
	return m.router
}

// Screen is the screen currently shown.
func (m Model) Screen() string {
	return m.screen
}

// Manager returns the state owner of a resource screen, creating it on first use.
func (m Model) Manager(screen string) (*resource.Manager, bool) {
	if mgr, ok := m.managers[screen]; ok {
		return mgr, true
	}
	def, ok := m.catalog.Definition(screen)
	if !ok {
		return nil, false
	}
	mgr := resource.NewManager(def, m.backend, resource.WithLogger(m.logger.With("screen", screen)))
	m.managers[screen] = mgr
	return mgr, true
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) context() (context.Context, context.CancelFunc) {
	if m.timeout > 0 {
		return context.WithTimeout(context.Background(), m.timeout)
	}
	return context.WithCancel(context.Background())
}

// run performs fn on a command goroutine and reports back with a resultMsg.
func (m Model) run(action string, fn func(context.Context) error) tea.Cmd {
	screen := m.screen
	return func() tea.Msg {
		ctx, cancel := m.context()
		defer cancel()
		return resultMsg{screen: screen, action: action, err: fn(ctx)}
	}
}

func (m Model) countsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.context()
		defer cancel()
		sections, err := m.dash.Counts(ctx)
		return countsMsg{sections: sections, err: err}
	}
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.context()
		defer cancel()
		return loginMsg{err: m.login.Submit(ctx, email, password)}
	}
}

// sync follows the router after a navigation and mounts the new screen.
func (m Model) sync() (Model, tea.Cmd) {
	screen, _ := m.router.Current()
	if screen == m.screen {
		return m, nil
	}
	m.screen = screen
	m.cursor = 0
	m.fieldCursor = 0
	m.mode = inputNone
	m.input.Blur()
	switch screen {
	case admin.ScreenLogin:
		m.password.SetValue("")
		m.loginFocus = 0
		m.password.Blur()
		return m, m.email.Focus()
	case admin.ScreenDashboard:
		return m, m.countsCmd()
	}
	mgr, ok := m.Manager(screen)
	if !ok {
		m.status = "Coming Soon"
		return m, nil
	}
	return m, m.run("load", mgr.Mount)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case loginMsg:
		m.busy = false
		m.status = ""
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		return m.sync()

	case countsMsg:
		m.sections = msg.sections
		m.status = ""
		if msg.err != nil {
			m.status = "Some counts failed: " + msg.err.Error()
		}
		return m, nil

	case resultMsg:
		if msg.screen != m.screen || errors.Is(msg.err, resource.ErrSuperseded) {
			return m, nil
		}
		m.status = ""
		if msg.err != nil {
			m.status = msg.err.Error()
		}
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.mode != inputNone {
			return m.updateInput(msg)
		}
		switch m.screen {
		case admin.ScreenLogin:
			return m.updateLogin(msg)
		case admin.ScreenDashboard:
			return m.updateDashboard(msg)
		default:
			return m.updateResource(msg)
		}
	}
	return m, nil
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "shift+tab", "up", "down":
		m.loginFocus = 1 - m.loginFocus
		if m.loginFocus == 0 {
			m.password.Blur()
			return m, m.email.Focus()
		}
		m.email.Blur()
		return m, m.password.Focus()
	case "enter":
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.status = "Signing in..."
		return m, m.loginCmd(m.email.Value(), m.password.Value())
	}
	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.sections)-1 {
			m.cursor++
		}
	case "r":
		return m, m.countsCmd()
	case "l":
		m.dash.Logout()
		return m.sync()
	case "enter":
		if len(m.sections) == 0 {
			return m, nil
		}
		if err := m.dash.Open(m.sections[m.cursor].Label); err != nil {
			m.status = err.Error()
			return m, nil
		}
		return m.sync()
	}
	return m, nil
}

func (m Model) updateResource(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	mgr, ok := m.Manager(m.screen)
	if !ok {
		if msg.String() == "esc" {
			m.router.GoBack()
			return m.sync()
		}
		return m, nil
	}
	st := mgr.Snapshot()
	def := mgr.Definition()
	key := msg.String()

	switch cur := st.Modal.(type) {
	case resource.None:
		switch key {
		case "q":
			return m, tea.Quit
		case "esc":
			m.router.GoBack()
			return m.sync()
		case "r":
			return m, m.run("refresh", mgr.Refresh)
		}
		if def.Single {
			return m, nil
		}
		switch key {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(st.Filtered)-1 {
				m.cursor++
			}
		case "enter":
			if id, ok := m.selectedID(st, def); ok {
				return m, m.run("view", func(ctx context.Context) error { return mgr.Select(ctx, id) })
			}
		case "e":
			if id, ok := m.selectedID(st, def); ok {
				m.fieldCursor = 0
				m.report(mgr.EditRecord(id))
			}
		case "a":
			m.fieldCursor = 0
			m.report(mgr.Add())
		case "f":
			m.status = "Filter: " + mgr.CycleFilter()
			m.clampCursor()
		case "/":
			m.mode = inputQuery
			m.input.SetValue(st.Query)
			return m, m.input.Focus()
		}

	case resource.Viewing:
		switch key {
		case "esc":
			m.report(mgr.Close())
		case "e":
			m.fieldCursor = 0
			m.report(mgr.Edit())
		case "a":
			m.fieldCursor = 0
			m.report(mgr.Add())
		case "d":
			m.report(mgr.RequestDelete())
		default:
			if status, ok := statusForKey(def, key); ok {
				return m, m.run("status", func(ctx context.Context) error { return mgr.SetStatus(ctx, status) })
			}
		}

	case resource.Editing, resource.Adding:
		fields := draftFields(def, draftOf(cur))
		switch key {
		case "esc":
			m.report(mgr.Cancel())
		case "up", "k":
			if m.fieldCursor > 0 {
				m.fieldCursor--
			}
		case "down", "j":
			if m.fieldCursor < len(fields)-1 {
				m.fieldCursor++
			}
		case "enter":
			if m.fieldCursor < len(fields) {
				m.mode = inputField
				m.input.SetValue(draftOf(cur).String(fields[m.fieldCursor]))
				return m, m.input.Focus()
			}
		case "ctrl+s":
			m.status = "Saving..."
			return m, m.run("save", mgr.Save)
		case "d":
			m.report(mgr.RequestDelete())
		default:
			if _, editing := cur.(resource.Editing); editing {
				if status, ok := statusForKey(def, key); ok {
					return m, m.run("status", func(ctx context.Context) error { return mgr.SetStatus(ctx, status) })
				}
			}
		}

	case resource.ConfirmingDelete:
		switch key {
		case "y":
			m.status = "Deleting..."
			return m, m.run("delete", mgr.ConfirmDelete)
		case "n", "esc":
			m.report(mgr.CancelDelete())
		}
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = inputNone
		m.input.Blur()
		return m, nil
	case "enter":
		value := m.input.Value()
		mode := m.mode
		m.mode = inputNone
		m.input.Blur()
		mgr, ok := m.Manager(m.screen)
		if !ok {
			return m, nil
		}
		switch mode {
		case inputQuery:
			m.report(mgr.SetQuery(value))
			m.cursor = 0
		case inputField:
			st := mgr.Snapshot()
			fields := draftFields(mgr.Definition(), draftOf(st.Modal))
			if m.fieldCursor < len(fields) {
				m.report(mgr.SetField(fields[m.fieldCursor], value))
			}
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// report shows err in the status line, or clears it.
func (m *Model) report(err error) {
	m.status = ""
	if err != nil {
		m.status = err.Error()
	}
}

func (m *Model) clampCursor() {
	mgr, ok := m.managers[m.screen]
	if !ok {
		return
	}
	n := len(mgr.Snapshot().Filtered)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selectedID(st resource.State, def resource.Definition) (string, bool) {
	if m.cursor < 0 || m.cursor >= len(st.Filtered) {
		return "", false
	}
	id := st.Filtered[m.cursor].ID(def.IDField)
	return id, id != ""
}

// statusForKey maps 1-9 to the screen's status actions by position and an
// upper-case letter to the first action with that initial.
func statusForKey(def resource.Definition, key string) (string, bool) {
	if n, err := strconv.Atoi(key); err == nil {
		if n >= 1 && n <= len(def.StatusActions) {
			return def.StatusActions[n-1], true
		}
		return "", false
	}
	if len(key) != 1 || key < "A" || key > "Z" {
		return "", false
	}
	for _, a := range def.StatusActions {
		if strings.HasPrefix(a, key) {
			return a, true
		}
	}
	return "", false
}

func draftOf(modal resource.Modal) models.Record {
	switch m := modal.(type) {
	case resource.Editing:
		return m.Draft
	case resource.Adding:
		return m.Draft
	}
	return nil
}

// draftFields orders a draft's fields: the screen's columns first, then the
// rest alphabetically. The primary key is not editable.
func draftFields(def resource.Definition, draft models.Record) []string {
	idField := models.Canonical(def.IDField)
	if idField == "" {
		idField = "id"
	}
	seen := map[string]bool{idField: true}
	var fields []string
	for _, c := range def.Columns {
		c = models.Canonical(c)
		if seen[c] {
			continue
		}
		if _, ok := draft[c]; ok {
			fields = append(fields, c)
			seen[c] = true
		}
	}
	var rest []string
	for k := range draft {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(fields, rest...)
}

// recordFields orders every field of rec for display.
func recordFields(def resource.Definition, rec models.Record) []string {
	var fields []string
	seen := map[string]bool{}
	for _, c := range def.Columns {
		c = models.Canonical(c)
		if _, ok := rec[c]; ok && !seen[c] {
			fields = append(fields, c)
			seen[c] = true
		}
	}
	var rest []string
	for k := range rec {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(fields, rest...)
}
