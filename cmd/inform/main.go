package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/soaringjerry/inform/internal/api"
	"github.com/soaringjerry/inform/internal/config"
	"github.com/soaringjerry/inform/internal/middleware"
	"github.com/soaringjerry/inform/internal/services"
	"github.com/soaringjerry/inform/internal/utils"
)

// errSilent marks failures whose message has already been printed.
var errSilent = errors.New("command failed")

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"validate":    {"validate <file>", runValidate},
	"summary":     {"summary [--json] [--page n] (<file> | --form <id>)", runSummary},
	"export":      {"export [-o out.csv] (<file> | --form <id>)", runExport},
	"new":         {"new [--type form|survey|quiz|logic] [--title t] [--questions n] <file>", runNew},
	"login":       {"login [--email e] [--password p] [--signup --username u]", runLogin},
	"logout":      {"logout", runLogout},
	"whoami":      {"whoami", runWhoami},
	"forms":       {"forms [--public] [--search s] [--status s] [--type t,...] [--privacy p] [--page n]", runForms},
	"publish":     {"publish <id>", runPublish},
	"delete":      {"delete <id>", runDelete},
	"pull":        {"pull [-o file] <id>", runPull},
	"push":        {"push <file>", runPush},
	"share":       {"share --email <address> <id>", runShare},
	"leaderboard": {"leaderboard [--page n] [--me token] <id>", runLeaderboard},
	"fill":        {"fill <share-id>", runFill},
}

// app carries what every command needs. The API client is built on first use.
type app struct {
	cfg    config.Config
	out    io.Writer
	errOut io.Writer
	prompt prompter
	tty    bool
	now    func() time.Time

	client *api.Client
	svc    *api.Services
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, out, errOut io.Writer) int {
	cfg, rest, err := config.Load(args)
	if err != nil {
		fmt.Fprintf(errOut, "inform: %v\n", err)
		return 2
	}
	config.InitLogger(cfg)

	if len(rest) == 0 {
		usage(errOut)
		return 2
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(errOut, "inform: unknown command %q\n", rest[0])
		usage(errOut)
		return 2
	}
	a := &app{
		cfg:    cfg,
		out:    out,
		errOut: errOut,
		prompt: surveyPrompter{},
		tty:    isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()),
		now:    time.Now,
	}
	if err := cmd.run(ctx, a, rest[1:]); err != nil {
		if !errors.Is(err, errSilent) {
			fmt.Fprintf(errOut, "inform %s: %s\n", rest[0], a.describe(err))
		}
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "usage: inform [--api url] [--lang en|zh] [--tz zone] <command> [args]")
	for _, n := range names {
		fmt.Fprintf(w, "  %s\n", commands[n].usage)
	}
}

// api returns the shared client, creating it with the persisted token store.
func (a *app) api() (*api.Client, *api.Services, error) {
	if a.client != nil {
		return a.client, a.svc, nil
	}
	c, err := api.New(a.cfg.APIURL,
		api.WithTokenStore(api.NewFileTokenStore(a.cfg.TokenFile)),
		api.WithLocale(a.cfg.Lang),
		api.WithTimeout(a.cfg.Timeout),
		api.WithSessionHandler(middleware.SessionHandlerFunc(func(context.Context) {
			fmt.Fprintln(a.errOut, utils.T(a.cfg.Lang, "session.expired"))
		})),
	)
	if err != nil {
		return nil, nil, err
	}
	a.client, a.svc = c, api.NewServices(c)
	return a.client, a.svc, nil
}

func (a *app) printf(key string, args ...any) {
	fmt.Fprintln(a.out, utils.Tf(a.cfg.Lang, key, args...))
}

// describe turns an error into the line shown to the user.
func (a *app) describe(err error) string {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return strings.Join(verr.Errors, "\n  ")
	}
	if errors.Is(err, middleware.ErrSessionExpired) || errors.Is(err, services.ErrTokenExpired) {
		return utils.T(a.cfg.Lang, "session.expired")
	}
	if se, ok := services.AsServiceError(err); ok {
		if se.Code == services.ErrorUnauthorized {
			return utils.T(a.cfg.Lang, "login.required")
		}
		return se.Message
	}
	var herr *api.HTTPError
	if errors.As(err, &herr) {
		if herr.Status == 401 {
			return utils.T(a.cfg.Lang, "login.required")
		}
		return herr.Message
	}
	return err.Error()
}
