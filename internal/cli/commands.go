package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"github.com/marketplace/storefront/internal/client/navigation"
	"github.com/marketplace/storefront/internal/client/query"
	"github.com/marketplace/storefront/internal/core/domain"
	"github.com/marketplace/storefront/internal/metrics"
	"github.com/marketplace/storefront/internal/validation"
)

// ErrLoginRequired is returned when a command needs a session and there is none.
var ErrLoginRequired = errors.New("login required")

// ErrUsage reports a malformed command line.
var ErrUsage = errors.New("usage")

type command struct {
	name    string
	summary string
	run     func(a *App, ctx context.Context, args []string) error
}

var commands = []command{
	{"login", "sign in with --email and --password", (*App).login},
	{"register", "create an account with --email, --password and --confirm", (*App).register},
	{"logout", "end the current session", (*App).logout},
	{"whoami", "print the signed-in user", (*App).whoami},
	{"feed", "browse the public feed, --pages N pages at a time", (*App).feed},
	{"list", "print one feed page selected by --page and --size", (*App).list},
	{"show", "print one publication by --id", (*App).show},
	{"mine", "list your publications", (*App).mine},
	{"create", "publish a new listing", (*App).create},
	{"edit", "edit a listing by --id", (*App).edit},
	{"pause", "hide a listing by --id from the feed", (*App).pause},
	{"activate", "show a paused listing by --id again", (*App).activate},
	{"delete", "remove a listing by --id", (*App).remove},
}

// Run parses global flags, then runs the named subcommand.
func (a *App) Run(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("marketplace", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(a.out)
	dumpMetrics := fs.Bool("metrics", false, "print client metrics after the command")
	fs.Usage = a.usage(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return fmt.Errorf("%w: missing command", ErrUsage)
	}
	cmd, ok := lookup(rest[0])
	if !ok {
		fs.Usage()
		return fmt.Errorf("%w: unknown command %q", ErrUsage, rest[0])
	}

	err := cmd.run(a, ctx, rest[1:])
	if errors.Is(err, domain.ErrUnauthorized) && !a.session.IsAuthenticated() {
		fmt.Fprintln(a.out, "Your session has ended. Log in again with `marketplace login`.")
	}
	if *dumpMetrics {
		if merr := metrics.WriteText(a.out, prometheus.DefaultGatherer); merr != nil {
			a.log.Warn().Err(merr).Msg("failed to write metrics")
		}
	}
	return err
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func (a *App) usage(fs *pflag.FlagSet) func() {
	return func() {
		fmt.Fprintln(a.out, "Usage: marketplace [--metrics] <command> [flags]")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Commands:")
		for _, c := range commands {
			fmt.Fprintf(a.out, "  %-10s %s\n", c.name, c.summary)
		}
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Global flags:")
		fmt.Fprint(a.out, fs.FlagUsages())
	}
}

func (a *App) flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func parse(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected arguments %s", ErrUsage, strings.Join(fs.Args(), " "))
	}
	return nil
}

// ── Account commands ──────────────────────────────────────────────────────────

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	var form validation.LoginForm
	fs.StringVar(&form.Email, "email", "", "account email")
	fs.StringVar(&form.Password, "password", "", "account password")
	if err := parse(fs, args); err != nil {
		return err
	}

	if !a.guard.AuthOnly() {
		fmt.Fprintf(a.out, "Already logged in as %s.\n", a.session.CurrentUser().Username)
		return nil
	}
	if err := a.validator.Validate(form); err != nil {
		return err
	}
	b, err := a.accounts.SignIn(ctx, form.Request())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s).\n", b.Username, b.Role)
	return nil
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	var form validation.RegisterForm
	fs.StringVar(&form.Email, "email", "", "account email")
	fs.StringVar(&form.Password, "password", "", "account password, at least 8 characters")
	fs.StringVar(&form.ConfirmPassword, "confirm", "", "repeat the password")
	if err := parse(fs, args); err != nil {
		return err
	}

	if !a.guard.AuthOnly() {
		fmt.Fprintf(a.out, "Already logged in as %s.\n", a.session.CurrentUser().Username)
		return nil
	}
	if err := a.validator.Validate(form); err != nil {
		return err
	}
	b, signedIn, err := a.accounts.SignUp(ctx, form.Request())
	if err != nil {
		return err
	}
	if !signedIn {
		fmt.Fprintln(a.out, "Account created. Log in with `marketplace login`.")
		return nil
	}
	fmt.Fprintf(a.out, "Account created. Logged in as %s (%s).\n", b.Username, b.Role)
	return nil
}

func (a *App) logout(ctx context.Context, args []string) error {
	if err := parse(a.flags("logout"), args); err != nil {
		return err
	}
	if !a.session.IsAuthenticated() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	a.session.Logout(ctx)
	a.guard.Public(navigation.PathHome)
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) whoami(_ context.Context, args []string) error {
	if err := parse(a.flags("whoami"), args); err != nil {
		return err
	}
	if !a.session.IsAuthenticated() {
		fmt.Fprintln(a.out, "anonymous")
		return nil
	}
	u := a.session.CurrentUser()
	fmt.Fprintf(a.out, "%s (id %d, %s)\n", u.Username, u.UserID, u.Role)
	return nil
}

// ── Feed commands ─────────────────────────────────────────────────────────────

func (a *App) feed(ctx context.Context, args []string) error {
	fs := a.flags("feed")
	pages := fs.Int("pages", 1, "number of pages to load")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *pages < 1 {
		return fmt.Errorf("%w: --pages must be at least 1", ErrUsage)
	}

	a.guard.Public(navigation.PathHome)
	feed := a.pubs.Feed()
	for i := 0; i < *pages && feed.HasNext(); i++ {
		if _, err := feed.FetchNext(ctx); err != nil {
			return err
		}
	}
	loaded := feed.Pages()
	printPublications(a.out, query.FeedItems(loaded))
	var total int64
	if n := len(loaded); n > 0 {
		total = loaded[n-1].Total
	}
	if feed.HasNext() {
		fmt.Fprintf(a.out, "\nShowing %d of %d. Use --pages to load more.\n", len(query.FeedItems(loaded)), total)
	}
	return nil
}

func (a *App) list(ctx context.Context, args []string) error {
	fs := a.flags("list")
	page := fs.Int("page", query.FirstPage, "page number, starting at 1")
	size := fs.Int("size", a.cfg.Client.PageSize, "page size")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *page < query.FirstPage || *size < 1 {
		return fmt.Errorf("%w: --page and --size must be positive", ErrUsage)
	}

	a.guard.Public(navigation.PathHome)
	resp, err := a.pubs.Page(ctx, *page, *size)
	if err != nil {
		return err
	}
	printPublications(a.out, resp.Publications)
	fmt.Fprintf(a.out, "\nPage %d, %d publications in total.\n", *page, resp.Total)
	return nil
}

func (a *App) show(ctx context.Context, args []string) error {
	fs := a.flags("show")
	id := fs.String("id", "", "publication id")
	if err := parse(fs, args); err != nil {
		return err
	}
	a.guard.Public(navigation.PathHome)
	p, err := a.pubs.Get(ctx, *id)
	if err != nil {
		return err
	}
	return printJSON(a.out, p)
}

// ── Seller commands ───────────────────────────────────────────────────────────

func (a *App) mine(ctx context.Context, args []string) error {
	if err := parse(a.flags("mine"), args); err != nil {
		return err
	}
	if !a.guard.Private(navigation.PathMyPublications) {
		return ErrLoginRequired
	}
	q := a.pubs.ByUser(a.session.CurrentUser().UserID)
	if _, err := q.FetchNext(ctx); err != nil {
		return err
	}
	items := query.FeedItems(q.Pages())
	if len(items) == 0 {
		fmt.Fprintln(a.out, "You have no publications yet.")
		return nil
	}
	printPublications(a.out, items)
	return nil
}

// fieldFlags binds the editable publication attributes to fs.
type fieldFlags struct {
	fs     *pflag.FlagSet
	fields *domain.PublicationFields
	price  string
	cond   string
}

func bindFields(fs *pflag.FlagSet, f *domain.PublicationFields) *fieldFlags {
	ff := &fieldFlags{fs: fs, fields: f}
	fs.StringVar(&f.Title, "title", f.Title, "title")
	fs.StringVar(&f.Description, "description", f.Description, "description")
	fs.StringVar(&ff.price, "price", "", "price, for example 149.99")
	fs.StringVar(&f.City, "city", f.City, "city")
	fs.StringVar(&f.Type, "type", f.Type, "item type")
	fs.StringVar(&f.Brand, "brand", f.Brand, "brand")
	fs.StringVar(&f.Model, "model", f.Model, "model")
	fs.StringVar(&f.Color, "color", f.Color, "color")
	fs.StringVar(&ff.cond, "condition", "", "Excelente, Bueno or Aceptable")
	fs.StringVar(&f.Compatibility, "compatibility", f.Compatibility, "compatibility notes")
	fs.BoolVar(&f.IsPremium, "premium", f.IsPremium, "list as premium")
	return ff
}

// finish applies the flags that need parsing. Flags that were not given
// keep the value bound at registration.
func (ff *fieldFlags) finish() error {
	if ff.fs.Changed("price") {
		price, err := decimal.NewFromString(ff.price)
		if err != nil {
			return fmt.Errorf("%w: invalid --price %q", ErrUsage, ff.price)
		}
		ff.fields.Price = price
	}
	if ff.fs.Changed("condition") {
		ff.fields.Condition = domain.Condition(ff.cond)
	}
	return nil
}

func (a *App) create(ctx context.Context, args []string) error {
	fs := a.flags("create")
	var req domain.CreatePublicationRequest
	ff := bindFields(fs, &req.PublicationFields)
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := ff.finish(); err != nil {
		return err
	}

	if !a.guard.Private(navigation.PathSell) {
		return ErrLoginRequired
	}
	if err := a.validator.Validate(req); err != nil {
		return err
	}
	if err := a.pubs.Create(ctx, req); err != nil {
		return err
	}
	a.guard.Public(navigation.PathMyPublications)
	fmt.Fprintf(a.out, "Published %q.\n", req.Title)
	return nil
}

func (a *App) edit(ctx context.Context, args []string) error {
	id, rest := splitID(args)
	if id == "" {
		return fmt.Errorf("%w: edit needs --id", ErrUsage)
	}
	if !a.guard.Private(navigation.EditPublicationPath(id)) {
		return ErrLoginRequired
	}

	current, err := a.pubs.Get(ctx, id)
	if err != nil {
		return err
	}
	req := domain.EditPublicationRequest{ID: id, PublicationFields: fieldsOf(current)}
	fs := a.flags("edit")
	ff := bindFields(fs, &req.PublicationFields)
	if err := parse(fs, rest); err != nil {
		return err
	}
	if err := ff.finish(); err != nil {
		return err
	}
	if err := a.validator.Validate(req); err != nil {
		return err
	}
	if err := a.pubs.Edit(ctx, req); err != nil {
		return err
	}
	a.guard.Public(navigation.PathMyPublications)
	fmt.Fprintf(a.out, "Updated %s.\n", id)
	return nil
}

func (a *App) pause(ctx context.Context, args []string) error {
	return a.byID(ctx, "pause", args, a.pubs.Pause, "Paused %s.\n")
}

func (a *App) activate(ctx context.Context, args []string) error {
	return a.byID(ctx, "activate", args, a.pubs.Activate, "Activated %s.\n")
}

func (a *App) remove(ctx context.Context, args []string) error {
	return a.byID(ctx, "delete", args, a.pubs.Delete, "Deleted %s.\n")
}

func (a *App) byID(ctx context.Context, name string, args []string, fn func(context.Context, string) error, done string) error {
	fs := a.flags(name)
	id := fs.String("id", "", "publication id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("%w: %s needs --id", ErrUsage, name)
	}
	if !a.guard.Private(navigation.PathMyPublications) {
		return ErrLoginRequired
	}
	if err := fn(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, done, *id)
	return nil
}

// splitID pulls -id out of args so the current publication can be loaded
// before the remaining flags are bound over it.
func splitID(args []string) (string, []string) {
	var id string
	rest := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-id" || arg == "--id":
			if i+1 < len(args) {
				id = args[i+1]
				i++
			}
		case strings.HasPrefix(arg, "-id="), strings.HasPrefix(arg, "--id="):
			id = arg[strings.Index(arg, "=")+1:]
		default:
			rest = append(rest, arg)
		}
	}
	return id, rest
}

func fieldsOf(p *domain.Publication) domain.PublicationFields {
	return domain.PublicationFields{
		Title:         p.Title,
		Description:   p.Description,
		Price:         p.Price,
		City:          p.City,
		IsPremium:     p.IsPremium,
		Type:          p.Type,
		Brand:         p.Brand,
		Model:         p.Model,
		Color:         p.Color,
		Condition:     p.Condition,
		Compatibility: p.Compatibility,
	}
}
