// Package cli wires the persistence core into a small command-line surface:
// identity resolution, subscription CRUD, and the derived summaries.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/subtrack/internal/analytics"
	"github.com/dmitrijs2005/subtrack/internal/cache"
	"github.com/dmitrijs2005/subtrack/internal/config"
	"github.com/dmitrijs2005/subtrack/internal/identity"
	"github.com/dmitrijs2005/subtrack/internal/logging"
	"github.com/dmitrijs2005/subtrack/internal/migrate"
	"github.com/dmitrijs2005/subtrack/internal/models"
	"github.com/dmitrijs2005/subtrack/internal/remote"
	"github.com/dmitrijs2005/subtrack/internal/store"
)

// App holds the wired application components. Construction performs all
// dependency injection; commands only use what NewApp assembled.
type App struct {
	config   *config.Config
	cache    *cache.Store
	remote   *remote.Store
	resolver *identity.Resolver
	service  *store.Service
	logger   logging.Logger
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp opens the cache, dials the remote store when a DSN is configured,
// and builds the resolver and persistence facade around them. A missing
// remote or provider only disables the corresponding path.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewDefault()

	cacheStore, err := cache.Open(ctx, cfg.CachePath, logger)
	if err != nil {
		return nil, fmt.Errorf("cache init error: %w", err)
	}

	var remoteStore *remote.Store
	var subsRepo remote.SubscriptionRepository
	var settingsRepo remote.SettingsRepository
	var migrator store.Migrator
	if cfg.DatabaseDSN != "" {
		remoteStore, err = remote.NewStore(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("remote store init error: %w", err)
		}
		subsRepo = remoteStore.Subscriptions()
		settingsRepo = remoteStore.Settings()
		migrator = migrate.NewMigrator(cacheStore, subsRepo, logger)
	}

	var provider identity.Provider
	if cfg.ProviderBaseURL != "" {
		provider = identity.NewHTTPProvider(cfg.ProviderBaseURL, cfg.ProviderTimeout)
	}
	resolver := identity.NewResolver(provider, cacheStore, logger)

	service, err := store.NewService(cacheStore, subsRepo, settingsRepo, migrator, logger)
	if err != nil {
		return nil, fmt.Errorf("facade init error: %w", err)
	}

	return &App{
		config:   cfg,
		cache:    cacheStore,
		remote:   remoteStore,
		resolver: resolver,
		service:  service,
		logger:   logger,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

// Close releases the cache and remote handles.
func (a *App) Close() error {
	if a.remote != nil {
		_ = a.remote.Close()
	}
	return a.cache.Close()
}

// Run dispatches a single subcommand.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.usage()
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		return a.register(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.resolver.SignOut(ctx)
	case "list":
		return a.list(ctx, rest)
	case "add":
		return a.add(ctx, rest)
	case "delete":
		return a.delete(ctx, rest)
	case "summary":
		return a.summary(ctx, rest)
	default:
		return a.usage()
	}
}

func (a *App) usage() error {
	fmt.Fprintln(a.out, `usage: subtrack <command>

commands:
  register <username>     create a local account
  login <username>        log in with a local account
  logout                  sign out everywhere
  list [artifact]         list subscriptions for the active identity
  add                     add a subscription interactively
  delete <id>             delete a subscription
  summary                 monthly total, per-category totals, upcoming renewals`)
	return nil
}

// resolve returns the active identity, optionally consuming a pending
// authorization artifact passed as the first argument.
func (a *App) resolve(ctx context.Context, args []string) (*identity.Identity, error) {
	artifact := ""
	if len(args) > 0 {
		artifact = args[0]
	}
	return a.resolver.Resolve(ctx, artifact)
}

func (a *App) register(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: register <username>")
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer identity.WipeBytes(password)
	if err := identity.RegisterLocal(ctx, a.cache, args[0], password); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "registered %s\n", args[0])
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: login <username>")
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer identity.WipeBytes(password)
	if err := identity.LoginLocal(ctx, a.cache, args[0], password); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "logged in as %s\n", args[0])
	return nil
}

func (a *App) list(ctx context.Context, args []string) error {
	id, err := a.resolve(ctx, args)
	if err != nil {
		return err
	}
	subs, err := a.service.Load(ctx, id.OwnerKey, id.RemoteID)
	if err != nil {
		return err
	}
	for _, s := range subs {
		fmt.Fprintf(a.out, "%s\t%s\t%s\t%s\t%s/%s/%s\n",
			s.ID, s.Name, s.Cost.StringFixed(2), s.RenewalDate.Format("2006-01-02"),
			s.Cycle, s.Status, s.Category)
	}
	return nil
}

func (a *App) add(ctx context.Context, args []string) error {
	id, err := a.resolve(ctx, nil)
	if err != nil {
		return err
	}

	name, err := GetSimpleText(a.reader, "Service name", a.out)
	if err != nil {
		return err
	}
	costText, err := GetSimpleText(a.reader, "Cost per cycle", a.out)
	if err != nil {
		return err
	}
	cost, err := decimal.NewFromString(costText)
	if err != nil {
		return fmt.Errorf("bad cost %q: %w", costText, err)
	}
	dateText, err := GetSimpleText(a.reader, "Renewal date (YYYY-MM-DD)", a.out)
	if err != nil {
		return err
	}
	renewal, err := time.ParseInLocation("2006-01-02", dateText, time.UTC)
	if err != nil {
		return fmt.Errorf("bad date %q: %w", dateText, err)
	}
	cycle, err := GetSimpleText(a.reader, "Cycle (monthly/annually)", a.out)
	if err != nil {
		return err
	}
	status, err := GetSimpleText(a.reader, "Status (active/trial)", a.out)
	if err != nil {
		return err
	}
	category, err := GetSimpleText(a.reader, "Category (software/shopping/design/storage/entertainment)", a.out)
	if err != nil {
		return err
	}

	sub := models.New(id.OwnerKey, name, cost, renewal,
		models.Cycle(cycle), models.Status(status), models.Category(category))
	if err := a.service.AddOne(ctx, *sub, id.OwnerKey, id.RemoteID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "added %s\n", sub.ID)
	return nil
}

func (a *App) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete <id>")
	}
	id, err := a.resolve(ctx, nil)
	if err != nil {
		return err
	}
	return a.service.DeleteOne(ctx, args[0], id.OwnerKey, id.RemoteID)
}

func (a *App) summary(ctx context.Context, args []string) error {
	id, err := a.resolve(ctx, args)
	if err != nil {
		return err
	}
	subs, err := a.service.Load(ctx, id.OwnerKey, id.RemoteID)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "monthly total: %s\n", analytics.MonthlyTotal(subs).StringFixed(2))

	fmt.Fprintln(a.out, "by category:")
	totals := analytics.CategoryTotals(subs)
	for _, c := range models.Categories() {
		fmt.Fprintf(a.out, "  %-14s %s\n", c, totals[c].StringFixed(2))
	}

	fmt.Fprintf(a.out, "renewing within %d days:\n", a.config.RenewalWindowDays)
	for _, s := range analytics.RenewalsWithin(subs, time.Now(), a.config.RenewalWindowDays) {
		fmt.Fprintf(a.out, "  %s\t%s\t%s\n", s.RenewalDate.Format("2006-01-02"), s.Name, s.Cost.StringFixed(2))
	}
	return nil
}
