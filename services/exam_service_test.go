package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizone/models"
)

func TestCreateExamSnapshot(t *testing.T) {
	f := newFixture(t)
	teacher := f.user("teacher", models.RoleTeacher)
	class := f.class(teacher)
	pack := f.pack(teacher, false, nil)
	first := f.card(pack.ID, []string{"a", "b"}, 0)

	svc := NewExamService(f.store)
	exam, err := svc.CreateExam(f.ctx, teacher.ID, CreateExamRequest{
		ClassID:        class.ID,
		QuestionPackID: pack.ID,
		Title:          "Midterm",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultExamDuration, exam.Duration)
	assert.Equal(t, []string{first.ID}, []string(exam.Questions))

	// cards added after creation stay out of the exam
	f.card(pack.ID, []string{"c", "d"}, 1)

	view, err := svc.GetExam(f.ctx, exam.ID)
	require.NoError(t, err)
	require.Len(t, view.Questions, 1)
	assert.Equal(t, []string{"a"}, view.Questions[0].CorrectAnswers)
	assert.Equal(t, "Pack", view.QuestionPack.Title)

	updated, err := f.store.GetClass(f.ctx, class.ID)
	require.NoError(t, err)
	assert.Contains(t, updated.Exams, exam.ID)
}

func TestCreateExamAuthorization(t *testing.T) {
	f := newFixture(t)
	owner := f.user("owner", models.RoleTeacher)
	other := f.user("other", models.RoleTeacher)
	ownClass := f.class(owner)
	otherClass := f.class(other)
	pack := f.pack(owner, true, nil)

	svc := NewExamService(f.store)
	tests := []struct {
		name      string
		requester string
		req       CreateExamRequest
		kind      ErrorKind
		code      int
	}{
		{"missing title", owner.ID, CreateExamRequest{ClassID: ownClass.ID, QuestionPackID: pack.ID}, KindValidation, CodeInvalidFields},
		{"not pack owner", other.ID, CreateExamRequest{ClassID: otherClass.ID, QuestionPackID: pack.ID, Title: "x"}, KindForbidden, CodeForbidden},
		{"not class teacher", owner.ID, CreateExamRequest{ClassID: otherClass.ID, QuestionPackID: pack.ID, Title: "x"}, KindForbidden, CodeForbidden},
		{"missing pack", owner.ID, CreateExamRequest{ClassID: ownClass.ID, QuestionPackID: "nope", Title: "x"}, KindForbidden, CodeForbidden},
		{"missing class", owner.ID, CreateExamRequest{ClassID: "nope", QuestionPackID: pack.ID, Title: "x"}, KindForbidden, CodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateExam(f.ctx, tt.requester, tt.req)
			requireCode(t, err, tt.kind, tt.code)
		})
	}
}

func TestGetExamByQuestionPack(t *testing.T) {
	f := newFixture(t)
	teacher := f.user("teacher", models.RoleTeacher)
	class := f.class(teacher)
	pack := f.pack(teacher, false, nil)
	svc := NewExamService(f.store)

	_, err := svc.GetExamByQuestionPack(f.ctx, pack.ID)
	assert.ErrorIs(t, err, ErrNoExam)

	exam, err := svc.CreateExam(f.ctx, teacher.ID, CreateExamRequest{ClassID: class.ID, QuestionPackID: pack.ID, Title: "Quiz", Duration: 15})
	require.NoError(t, err)

	view, err := svc.GetExamByQuestionPack(f.ctx, pack.ID)
	require.NoError(t, err)
	assert.Equal(t, exam.ID, view.ID)
	assert.Equal(t, 15, view.Duration)
	assert.Empty(t, view.Questions)

	_, err = svc.GetExam(f.ctx, "missing")
	requireCode(t, err, KindNotFound, CodeNotFound)
}
