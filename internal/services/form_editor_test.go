package services

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/soaringjerry/inform/internal/models"
)

func newTestEditor() *FormEditor {
	e := NewFormEditor(nil)
	n := 0
	e.newID = func() string {
		n++
		return fmt.Sprintf("tmp-%d", n)
	}
	return e
}

func keys(f *models.Form) []string {
	out := []string{}
	for _, q := range f.Questions {
		out = append(out, q.Key())
	}
	return out
}

func TestFormEditorAddAndReorder(t *testing.T) {
	e := newTestEditor()
	if !e.IsEmpty() {
		t.Fatalf("new editor should be empty")
	}
	a, b, c := e.AddQuestion(), e.AddQuestion(), e.AddQuestion()
	if e.IsEmpty() {
		t.Fatalf("editor with questions is not empty")
	}
	if q := e.Form().Questions[0]; q.Points != 1 || q.Type != "" {
		t.Fatalf("unexpected new question %+v", q)
	}

	if !e.MoveQuestionUp(c) || e.MoveQuestionUp(a) {
		t.Fatalf("unexpected move results")
	}
	if diff := cmp.Diff([]string{a, c, b}, keys(e.Form())); diff != "" {
		t.Fatalf("after up (-want +got):\n%s", diff)
	}
	if !e.MoveQuestionDown(a) || e.MoveQuestionDown(b) || e.MoveQuestionDown("missing") {
		t.Fatalf("unexpected move down results")
	}
	if diff := cmp.Diff([]string{c, a, b}, keys(e.Form())); diff != "" {
		t.Fatalf("after down (-want +got):\n%s", diff)
	}
}

func TestFormEditorUpdateQuestion(t *testing.T) {
	e := newTestEditor()
	k := e.AddQuestion()
	typ := models.QuestionSingleChoice
	text := "Favourite colour"
	choices := []string{"red", "blue"}
	if !e.UpdateQuestion(k, QuestionPatch{Type: &typ, QuestionText: &text, Choices: &choices}) {
		t.Fatalf("update failed")
	}
	choices[0] = "green"
	q := e.Form().Questions[0]
	if q.Type != typ || q.QuestionText != text || q.Choices[0] != "red" || q.Points != 1 {
		t.Fatalf("unexpected question %+v", q)
	}
	if e.UpdateQuestion("nope", QuestionPatch{QuestionText: &text}) {
		t.Fatalf("update of unknown key should fail")
	}
}

func TestFormEditorLogicType(t *testing.T) {
	e := newTestEditor()
	a := e.AddQuestion()
	e.SetType(models.FormTypeLogic)
	f := e.Form()
	if len(f.Questions) != 2 || !f.Questions[0].IsLogicQuestion || f.Questions[0].Type != models.QuestionYesNo {
		t.Fatalf("logic question not prepended: %+v", f.Questions)
	}
	lq := f.Questions[0].Key()

	e.SetType(models.FormTypeLogic)
	if len(e.Form().Questions) != 2 {
		t.Fatalf("logic question duplicated")
	}
	if e.DeleteQuestion(lq) {
		t.Fatalf("logic question must not be deletable")
	}
	if diff := cmp.Diff([]string{lq, a}, keys(e.Form())); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	e.SetType(models.FormTypeSurvey)
	if diff := cmp.Diff([]string{a}, keys(e.Form())); diff != "" {
		t.Fatalf("after leaving logic (-want +got):\n%s", diff)
	}
}

func TestFormEditorDeleteKeepsOthers(t *testing.T) {
	e := newTestEditor()
	e.SetType(models.FormTypeLogic)
	a, b := e.AddQuestion(), e.AddQuestion()
	if !e.DeleteQuestion(a) {
		t.Fatalf("delete failed")
	}
	if got := keys(e.Form()); len(got) != 2 || got[1] != b || !e.Form().Questions[0].IsLogicQuestion {
		t.Fatalf("unexpected questions after delete: %v", got)
	}
}

func TestFormEditorPayloadStripsTempIDs(t *testing.T) {
	e := newTestEditor()
	e.SetTitle("T")
	e.AddQuestion()
	e.Form().Questions = append(e.Form().Questions, models.Question{ID: "saved"})
	p := e.Payload()
	if p.Questions[0].TempID != "" || p.Questions[1].ID != "saved" {
		t.Fatalf("unexpected payload %+v", p.Questions)
	}
	if e.Form().Questions[0].TempID == "" {
		t.Fatalf("payload must not modify the edited form")
	}
}

func TestFormEditorSettings(t *testing.T) {
	e := newTestEditor()
	e.SetResponseLimit(10)
	if e.Form().ResponseLimit == nil || *e.Form().ResponseLimit != 10 {
		t.Fatalf("limit not set")
	}
	e.SetResponseLimit(0)
	if e.Form().ResponseLimit != nil {
		t.Fatalf("limit not cleared")
	}
	e.SetPublic(true)
	e.Reset()
	if !e.IsEmpty() || e.Form().IsPublic || e.Form().State != models.FormStateDraft {
		t.Fatalf("reset left state behind: %+v", e.Form())
	}
}
