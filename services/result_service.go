package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"quizone/models"
	"quizone/storage"
)

type ResultService struct {
	store storage.Store
}

func NewResultService(store storage.Store) *ResultService {
	return &ResultService{store: store}
}

type SubmitExamRequest struct {
	ExamID  string              `json:"examId" binding:"required"`
	Answers map[string][]string `json:"answers"`
}

// ExamResults is a teacher's view of every submission for one exam.
type ExamResults struct {
	Answers [][]string                 `json:"answers"`
	Results []models.ResultWithStudent `json:"results"`
}

// SubmitExam grades the student's answers and stores the result. Only students of the
// exam's class may submit, once per exam.
func (s *ResultService) SubmitExam(ctx context.Context, studentID string, req SubmitExamRequest) (*models.Result, error) {
	exam, err := s.store.GetExam(ctx, req.ExamID)
	if err != nil {
		return nil, lookupErr(err, CodeNotFound, "Exam not found.")
	}

	class, err := s.store.GetClass(ctx, exam.ClassID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, Internal(err, "An error occurred while submitting the exam.")
	}
	if class == nil || !class.HasStudent(studentID) {
		return nil, Forbidden(CodeForbidden, "You are not a student of this exam's class.")
	}

	questions, err := s.store.GetFlashcards(ctx, exam.Questions)
	if err != nil {
		return nil, Internal(err, "An error occurred while submitting the exam.")
	}
	score, records := Grade(questions, req.Answers)

	result := &models.Result{
		ID:        uuid.NewString(),
		StudentID: studentID,
		ExamID:    exam.ID,
		Score:     score,
		Answers:   records,
	}
	if err := s.store.CreateResult(ctx, result); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, Conflict(CodeAlreadySubmitted, "You have already submitted this exam.")
		}
		return nil, Internal(err, "An error occurred while submitting the exam.")
	}
	return result, nil
}

// GetExamResults is restricted to the owner of the exam's question pack.
func (s *ResultService) GetExamResults(ctx context.Context, requesterID, examID string) (*ExamResults, error) {
	exam, err := s.store.GetExam(ctx, examID)
	if err != nil {
		return nil, lookupErr(err, CodeNotFound, "Exam not found.")
	}

	pack, err := s.store.GetQuestionPack(ctx, exam.QuestionPackID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, Internal(err, "An error occurred while fetching the results.")
	}
	if pack == nil || !pack.IsOwner(requesterID) {
		return nil, Forbidden(CodeAccessDenied, "You do not have access to this exam.")
	}

	results, err := s.store.ListResultsByExam(ctx, examID)
	if err != nil {
		return nil, Internal(err, "An error occurred while fetching the results.")
	}
	if len(results) == 0 {
		return nil, NotFound(CodeNotFound, "No results found for this exam.")
	}

	cards, err := s.store.GetFlashcards(ctx, pack.Questions)
	if err != nil {
		return nil, Internal(err, "An error occurred while fetching the results.")
	}
	answers := make([][]string, 0, len(cards))
	for _, c := range cards {
		answers = append(answers, append([]string{}, c.Answers...))
	}

	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.StudentID)
	}
	users, err := s.store.GetUsers(ctx, ids)
	if err != nil {
		return nil, Internal(err, "An error occurred while fetching the results.")
	}
	students := make(map[string]models.UserSummary, len(users))
	for i := range users {
		students[users[i].ID] = users[i].Summary()
	}

	out := make([]models.ResultWithStudent, 0, len(results))
	for _, r := range results {
		student, ok := students[r.StudentID]
		if !ok {
			student = models.UserSummary{ID: r.StudentID}
		}
		out = append(out, models.ResultWithStudent{Result: r, Student: student})
	}
	return &ExamResults{Answers: answers, Results: out}, nil
}

// GetStudentResults expands each result with its exam and that exam's question pack.
func (s *ResultService) GetStudentResults(ctx context.Context, studentID string) ([]models.ResultWithExam, error) {
	results, err := s.store.ListResultsByStudent(ctx, studentID)
	if err != nil {
		return nil, Internal(err, "An error occurred while fetching results.")
	}
	if len(results) == 0 {
		return nil, NotFound(CodeNotFound, "No results found for this student.")
	}

	exams := map[string]*models.Exam{}
	packs := map[string]*models.QuestionPack{}
	out := make([]models.ResultWithExam, 0, len(results))
	for _, r := range results {
		exam, seen := exams[r.ExamID]
		if !seen {
			exam, err = s.store.GetExam(ctx, r.ExamID)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return nil, Internal(err, "An error occurred while fetching results.")
			}
			exams[r.ExamID] = exam
		}

		var pack *models.QuestionPack
		if exam != nil {
			pack, seen = packs[exam.QuestionPackID]
			if !seen {
				pack, err = s.store.GetQuestionPack(ctx, exam.QuestionPackID)
				if err != nil && !errors.Is(err, storage.ErrNotFound) {
					return nil, Internal(err, "An error occurred while fetching results.")
				}
				packs[exam.QuestionPackID] = pack
			}
		}
		out = append(out, models.ResultWithExam{Result: r, Exam: exam, QuestionPack: pack})
	}
	return out, nil
}
