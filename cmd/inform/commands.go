package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/dustin/go-humanize"

	"github.com/soaringjerry/inform/internal/api"
	"github.com/soaringjerry/inform/internal/models"
	"github.com/soaringjerry/inform/internal/services"
)

func newFlags(name string, a *app) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

// oneArg parses fs and requires exactly one positional argument.
func oneArg(fs *flag.FlagSet, args []string, what string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() != 1 {
		return "", fmt.Errorf("expected one %s", what)
	}
	return fs.Arg(0), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func runValidate(_ context.Context, a *app, args []string) error {
	path, err := oneArg(newFlags("validate", a), args, "file")
	if err != nil {
		return err
	}
	doc, err := services.LoadFormDocument(path)
	if err != nil {
		return err
	}
	res := services.ValidateForm(&doc.Form)
	if res.IsValid {
		a.printf("validate.ok", path)
		return nil
	}
	a.printf("validate.invalid", path)
	for _, msg := range res.Errors {
		fmt.Fprintf(a.out, "  - %s\n", msg)
	}
	return errSilent
}

func runSummary(ctx context.Context, a *app, args []string) error {
	fs := newFlags("summary", a)
	formID := fs.String("form", "", "summarize a stored form by id")
	asJSON := fs.Bool("json", false, "print the summary as JSON")
	page := fs.Int("page", 1, "page of text answers to list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var summary services.FormSummary
	if *formID != "" {
		_, svc, err := a.api()
		if err != nil {
			return err
		}
		report, err := svc.Analytics.Report(ctx, *formID)
		if err != nil {
			return err
		}
		summary = report.Summary
	} else {
		if fs.NArg() != 1 {
			return errors.New("expected a file or --form")
		}
		doc, err := services.LoadFormDocument(fs.Arg(0))
		if err != nil {
			return err
		}
		summary = services.SummarizeForm(&doc.Form, doc.Responses)
	}

	if *asJSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	renderSummary(a.out, a.cfg.Lang, summary, *page)
	return nil
}

func runExport(ctx context.Context, a *app, args []string) error {
	fs := newFlags("export", a)
	formID := fs.String("form", "", "export a stored form by id")
	output := fs.String("o", "", "output path, - for stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var res *services.ExportResult
	if *formID != "" {
		_, svc, err := a.api()
		if err != nil {
			return err
		}
		res, err = svc.Export.ExportCSV(ctx, services.ExportParams{FormID: *formID, Location: a.cfg.Timezone})
		if err != nil {
			return err
		}
	} else {
		if fs.NArg() != 1 {
			return errors.New("expected a file or --form")
		}
		doc, err := services.LoadFormDocument(fs.Arg(0))
		if err != nil {
			return err
		}
		lb := doc.Leaderboard
		if doc.Form.Type == models.FormTypeQuiz && len(lb) == 0 {
			lb = services.ScoreQuiz(&doc.Form, doc.Responses)
		}
		res, err = services.BuildExport(&doc.Form, doc.Responses, lb, a.cfg.Timezone)
		if err != nil {
			return err
		}
	}

	if *output == "-" {
		_, err := a.out.Write(res.Data)
		return err
	}
	path := *output
	if path == "" {
		path = res.Filename
	}
	if err := os.WriteFile(path, res.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	a.printf("export.written", humanize.Comma(int64(res.Rows)), path, humanize.Bytes(uint64(len(res.Data))))
	return nil
}

var questionTypes = []string{
	string(models.QuestionShortText), string(models.QuestionLongText), string(models.QuestionSingleChoice),
	string(models.QuestionMultiChoice), string(models.QuestionRating), string(models.QuestionDate),
}

// runNew writes a starter document with n blank questions for the chosen type.
func runNew(_ context.Context, a *app, args []string) error {
	fs := newFlags("new", a)
	typ := fs.String("type", string(models.FormTypeForm), "form, survey, quiz or logic")
	title := fs.String("title", "", "form title")
	n := fs.Int("questions", 1, "number of blank questions")
	path, err := oneArg(fs, args, "file")
	if err != nil {
		return err
	}
	switch models.FormType(*typ) {
	case models.FormTypeForm, models.FormTypeSurvey, models.FormTypeQuiz, models.FormTypeLogic:
	default:
		return fmt.Errorf("unknown form type %q", *typ)
	}

	ed := services.NewFormEditor(nil)
	ed.SetType(models.FormType(*typ))
	ed.SetTitle(*title)
	qt := models.QuestionShortText
	if ed.Form().Type == models.FormTypeQuiz {
		qt = models.QuestionSingleChoice
	}
	for i := 0; i < *n; i++ {
		key := ed.AddQuestion()
		ed.UpdateQuestion(key, services.QuestionPatch{Type: &qt})
	}
	doc := &services.FormDocument{Form: *ed.Form()}
	if err := services.SaveFormDocument(path, doc); err != nil {
		return err
	}
	a.printf("new.written", ed.Form().Type.Label(), path)
	fmt.Fprintf(a.out, "question types: %s\n", strings.Join(questionTypes, ", "))
	return nil
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlags("login", a)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	signup := fs.Bool("signup", false, "create the account first")
	username := fs.String("username", "", "username for --signup")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" || (*signup && *username == "") {
		if !a.tty {
			return errors.New("--email and --password are required when not on a terminal")
		}
		if *signup && *username == "" {
			if err := a.prompt.AskOne(&survey.Input{Message: "Username"}, username, survey.WithValidator(survey.Required)); err != nil {
				return err
			}
		}
		if *email == "" {
			if err := a.prompt.AskOne(&survey.Input{Message: "Email"}, email, survey.WithValidator(validEmail)); err != nil {
				return err
			}
		}
		if *password == "" {
			if err := a.prompt.AskOne(&survey.Password{Message: "Password"}, password, survey.WithValidator(survey.Required)); err != nil {
				return err
			}
		}
	}

	client, _, err := a.api()
	if err != nil {
		return err
	}
	creds := api.Credentials{Username: *username, Email: strings.TrimSpace(*email), Password: *password}
	signIn := client.SignIn
	if *signup {
		signIn = client.SignUp
	}
	user, err := signIn(ctx, creds)
	if err != nil {
		return err
	}
	name := creds.Email
	if user != nil && user.Username != "" {
		name = user.Username
	}
	a.printf("login.success", name)
	return nil
}

func validEmail(v any) error {
	s, _ := v.(string)
	if !services.IsValidEmail(strings.TrimSpace(s)) {
		return errors.New("enter a valid email address")
	}
	return nil
}

func runLogout(ctx context.Context, a *app, _ []string) error {
	client, _, err := a.api()
	if err != nil {
		return err
	}
	if err := client.SignOut(ctx); err != nil {
		return err
	}
	a.printf("logout.done")
	return nil
}

func runWhoami(ctx context.Context, a *app, _ []string) error {
	client, _, err := a.api()
	if err != nil {
		return err
	}
	user, err := client.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s>\n", user.Username, user.Email)
	return nil
}

func runForms(ctx context.Context, a *app, args []string) error {
	fs := newFlags("forms", a)
	public := fs.Bool("public", false, "list public forms instead of your own")
	search := fs.String("search", "", "title contains")
	status := fs.String("status", "", "comma separated: draft,live,closed")
	types := fs.String("type", "", "comma separated: form,survey,quiz,logic")
	privacy := fs.String("privacy", "", "public or private")
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	client, _, err := a.api()
	if err != nil {
		return err
	}
	list := client.ListUserForms
	if *public {
		list = client.ListPublicForms
	}
	forms, err := list(ctx)
	if err != nil {
		return err
	}

	filter := services.FormFilter{Search: *search, Status: splitList(*status), Privacy: splitList(*privacy)}
	for _, t := range splitList(*types) {
		filter.Types = append(filter.Types, models.FormType(strings.ToLower(t)))
	}
	matched := services.FilterForms(forms, filter)
	renderForms(a.out, a.cfg.Lang, a.cfg.ShareBase, services.Paginate(matched, *page, services.DashboardPageSize), a.now())
	return nil
}

func runPublish(ctx context.Context, a *app, args []string) error {
	id, err := oneArg(newFlags("publish", a), args, "form id")
	if err != nil {
		return err
	}
	client, svc, err := a.api()
	if err != nil {
		return err
	}
	form, err := client.GetForm(ctx, id)
	if err != nil {
		return err
	}
	updated, err := svc.Forms.ToggleState(ctx, form)
	if err != nil {
		return err
	}
	a.printf("publish.done", services.StateMessage(updated))
	if updated.State == models.FormStateLive && updated.ShareID != "" {
		fmt.Fprintln(a.out, services.ShareLink(a.cfg.ShareBase, updated.ShareID))
	}
	return nil
}

func runDelete(ctx context.Context, a *app, args []string) error {
	id, err := oneArg(newFlags("delete", a), args, "form id")
	if err != nil {
		return err
	}
	client, svc, err := a.api()
	if err != nil {
		return err
	}
	form, err := client.GetForm(ctx, id)
	if err != nil {
		return err
	}
	msg, err := svc.Forms.Delete(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

// runPull saves a stored form with its responses as a document for offline use.
func runPull(ctx context.Context, a *app, args []string) error {
	fs := newFlags("pull", a)
	output := fs.String("o", "", "output file (.yaml, .yml or .json)")
	id, err := oneArg(fs, args, "form id")
	if err != nil {
		return err
	}
	client, _, err := a.api()
	if err != nil {
		return err
	}
	form, err := client.GetForm(ctx, id)
	if err != nil {
		return err
	}
	responses, err := client.ListResponses(ctx, id)
	if err != nil {
		return err
	}
	doc := &services.FormDocument{Form: *form, Responses: responses}
	if form.Type == models.FormTypeQuiz {
		lb, err := client.GetQuizResults(ctx, id)
		var herr *api.HTTPError
		if err != nil && !(errors.As(err, &herr) && herr.Status == 404) {
			return err
		}
		doc.Leaderboard = lb
	}
	path := *output
	if path == "" {
		path = id + ".yaml"
	}
	if err := services.SaveFormDocument(path, doc); err != nil {
		return err
	}
	a.printf("pull.written", form.Title, humanize.Comma(int64(len(responses))), path)
	return nil
}

// runPush validates and saves the document's form, then writes back the stored
// version so later pushes update instead of creating.
func runPush(ctx context.Context, a *app, args []string) error {
	path, err := oneArg(newFlags("push", a), args, "file")
	if err != nil {
		return err
	}
	doc, err := services.LoadFormDocument(path)
	if err != nil {
		return err
	}
	_, svc, err := a.api()
	if err != nil {
		return err
	}
	saved, msg, err := svc.Forms.Save(ctx, &doc.Form)
	if err != nil {
		return err
	}
	if saved != nil {
		doc.Form = *saved
		if err := services.SaveFormDocument(path, doc); err != nil {
			return err
		}
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func runShare(ctx context.Context, a *app, args []string) error {
	fs := newFlags("share", a)
	email := fs.String("email", "", "recipient address")
	id, err := oneArg(fs, args, "form id")
	if err != nil {
		return err
	}
	client, _, err := a.api()
	if err != nil {
		return err
	}
	form, err := client.GetForm(ctx, id)
	if err != nil {
		return err
	}
	msg, err := services.NewShareEmail(*email, form, a.cfg.ShareBase)
	if err != nil {
		return err
	}
	if err := client.SendShareLink(ctx, msg); err != nil {
		return err
	}
	a.printf("email.sent", msg.Email)
	return nil
}

func runLeaderboard(ctx context.Context, a *app, args []string) error {
	fs := newFlags("leaderboard", a)
	page := fs.Int("page", 1, "page number")
	me := fs.String("me", "", "your user token, to highlight your row")
	id, err := oneArg(fs, args, "form id")
	if err != nil {
		return err
	}
	client, _, err := a.api()
	if err != nil {
		return err
	}
	entries, err := client.GetQuizResults(ctx, id)
	if err != nil {
		return err
	}
	renderLeaderboard(a.out, a.cfg.Lang, services.PageLeaderboard(entries, *page, *me))
	return nil
}

// runFill answers a shared form interactively.
func runFill(ctx context.Context, a *app, args []string) error {
	shareID, err := oneArg(newFlags("fill", a), args, "share id")
	if err != nil {
		return err
	}
	if !a.tty {
		return errors.New("fill needs an interactive terminal")
	}
	_, svc, err := a.api()
	if err != nil {
		return err
	}
	form, err := svc.Responses.Open(ctx, shareID)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, form.Title)
	if form.Description != "" {
		fmt.Fprintln(a.out, form.Description)
	}

	answers := make(map[string]models.AnswerValue, len(form.Questions))
	for _, q := range form.Questions {
		v, err := askAnswer(a.prompt, q)
		if err != nil {
			return err
		}
		answers[q.Key()] = v
	}
	res, err := svc.Responses.Submit(ctx, form, answers)
	if err != nil {
		return err
	}
	if res.Message != "" {
		fmt.Fprintln(a.out, res.Message)
	} else {
		a.printf("fill.submitted")
	}
	if res.UserToken != "" {
		fmt.Fprintf(a.out, "inform leaderboard --me %s %s\n", res.UserToken, form.ID)
	}
	return nil
}
