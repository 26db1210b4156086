// Command client is a scriptable admin client: one command per run, JSON on
// stdout.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/harrylevesque/ecoadmin/internal/admin"
	"github.com/harrylevesque/ecoadmin/internal/api"
	"github.com/harrylevesque/ecoadmin/internal/config"
	"github.com/harrylevesque/ecoadmin/internal/metrics"
	"github.com/harrylevesque/ecoadmin/internal/resource"
	"github.com/harrylevesque/ecoadmin/internal/utils"
)

// fieldFlags collects repeated -set key=value flags.
type fieldFlags []string

func (f *fieldFlags) String() string { return strings.Join(*f, ",") }

func (f *fieldFlags) Set(v string) error {
	if !strings.Contains(v, "=") {
		return fmt.Errorf("expected key=value, got %q", v)
	}
	*f = append(*f, v)
	return nil
}

func (f fieldFlags) each(fn func(key, value string) error) error {
	for _, kv := range f {
		k, v, _ := strings.Cut(kv, "=")
		if err := fn(strings.TrimSpace(k), v); err != nil {
			return err
		}
	}
	return nil
}

// printNav records where a flow would have navigated.
type printNav struct{ screen string }

func (n *printNav) NavigateTo(screen string, _ map[string]any) { n.screen = screen }
func (n *printNav) GoBack()                                   {}

type options struct {
	cmd      string
	resource string
	id       string
	filter   string
	query    string
	status   string
	yes      bool
	email    string
	password string
	fields   fieldFlags
}

func main() {
	var opts options
	flag.StringVar(&opts.cmd, "cmd", "list", "Command: list|get|create|update|status|delete|login|dashboard")
	flag.StringVar(&opts.resource, "resource", "", "Resource or screen name (bookings, itineraries, requests, users, partners, locations, feedback, analytics)")
	flag.StringVar(&opts.id, "id", "", "Record id (get/update/status/delete)")
	flag.StringVar(&opts.filter, "filter", resource.FilterAll, "Status filter for list")
	flag.StringVar(&opts.query, "query", "", "Expression filter for list, e.g. 'durationDays > 3'")
	flag.StringVar(&opts.status, "status", "", "Status action for -cmd status")
	flag.BoolVar(&opts.yes, "yes", false, "Confirm -cmd delete")
	flag.StringVar(&opts.email, "email", "", "Login email")
	flag.StringVar(&opts.password, "password", "", "Login password")
	flag.Var(&opts.fields, "set", "Field to write as key=value (repeatable)")
	configPath := flag.String("config", "", "Config file (default ecoadmin.yaml when present)")
	serverFlag := flag.String("server", "", "Override every API root (e.g. http://localhost:8080/api/api)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if *serverFlag != "" {
		cfg.Hosts = cfg.Hosts.All(*serverFlag)
	}
	logger := utils.NewStderrLogger(cfg.Level())
	client := api.NewClient(api.WithLogger(logger), api.WithMetrics(metrics.New("ecoadmin")))
	catalog := admin.NewCatalog(cfg.Hosts)

	ctx := context.Background()
	if cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RequestTimeout)
		defer cancel()
	}

	out, err := run(ctx, client, catalog, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client *api.Client, catalog *admin.Catalog, opts options) (any, error) {
	switch opts.cmd {
	case "login":
		nav := &printNav{}
		flow := admin.NewLoginFlow(client, catalog.LoginURL(), nav, nil)
		if err := flow.Submit(ctx, opts.email, opts.password); err != nil {
			return nil, err
		}
		return map[string]any{"ok": true, "screen": nav.screen}, nil
	case "dashboard":
		sections, err := admin.NewDashboard(catalog, client, &printNav{}, nil).Counts(ctx)
		out := make([]map[string]any, 0, len(sections))
		for _, s := range sections {
			row := map[string]any{"label": s.Label, "screen": s.Screen}
			if s.Counted {
				row["count"] = s.Count
			}
			if s.Err != nil {
				row["error"] = s.Err.Error()
			}
			out = append(out, row)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "Warning:", err)
		}
		return out, nil
	}

	if opts.resource == "" {
		return nil, errors.New("-resource required")
	}
	def, ok := catalog.Definition(opts.resource)
	if !ok {
		return nil, fmt.Errorf("unknown resource %q", opts.resource)
	}
	mgr := resource.NewManager(def, client)
	if err := mgr.Mount(ctx); err != nil {
		return nil, err
	}

	switch opts.cmd {
	case "list":
		if err := mgr.SetFilter(opts.filter); err != nil {
			return nil, err
		}
		if err := mgr.SetQuery(opts.query); err != nil {
			return nil, err
		}
		if def.Single {
			return mgr.Snapshot().Items, nil
		}
		return mgr.Snapshot().Filtered, nil
	case "create":
		if err := mgr.Add(); err != nil {
			return nil, err
		}
		if err := opts.fields.each(func(k, v string) error { return mgr.SetField(k, v) }); err != nil {
			return nil, err
		}
		return saved(mgr, mgr.Save(ctx))
	}

	if opts.id == "" {
		return nil, errors.New("-id required")
	}
	if err := mgr.Select(ctx, opts.id); err != nil {
		return nil, err
	}
	switch opts.cmd {
	case "get":
		if v, ok := mgr.Snapshot().Modal.(resource.Viewing); ok {
			return v.Record, nil
		}
		return nil, resource.ErrUnknownRecord
	case "update":
		if err := mgr.Edit(); err != nil {
			return nil, err
		}
		if err := opts.fields.each(func(k, v string) error { return mgr.SetField(k, v) }); err != nil {
			return nil, err
		}
		return saved(mgr, mgr.Save(ctx))
	case "status":
		return saved(mgr, mgr.SetStatus(ctx, opts.status))
	case "delete":
		if err := mgr.RequestDelete(); err != nil {
			return nil, err
		}
		if !opts.yes {
			return nil, fmt.Errorf("%w: pass -yes to delete %s %s", resource.ErrDeleteNotConfirmed, def.Name, opts.id)
		}
		return saved(mgr, mgr.ConfirmDelete(ctx))
	}
	return nil, fmt.Errorf("unknown command %q", opts.cmd)
}

func saved(mgr *resource.Manager, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	st := mgr.Snapshot()
	return map[string]any{"ok": true, "notice": st.Notice, "count": len(st.Items)}, nil
}
