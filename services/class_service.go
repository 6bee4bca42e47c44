package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"quizone/models"
	"quizone/storage"
)

type ClassService struct {
	store       storage.Store
	frontendURL string
}

func NewClassService(store storage.Store, frontendURL string) *ClassService {
	return &ClassService{store: store, frontendURL: strings.TrimRight(frontendURL, "/")}
}

type CreateClassRequest struct {
	Name     string   `json:"name"`
	Students []string `json:"students"`
}

// ClassView is a class with its teacher and roster expanded.
type ClassView struct {
	models.Class
	Teacher  *models.UserSummary  `json:"teacher"`
	Students []models.UserSummary `json:"students"`
}

type ClassMembers struct {
	Teacher  *models.UserSummary  `json:"teacher"`
	Students []models.UserSummary `json:"students"`
}

func (s *ClassService) Create(ctx context.Context, ident *models.Identity, req CreateClassRequest) (*models.Class, error) {
	if !ident.CanAuthor() {
		return nil, Forbidden(CodeForbidden, "Only teachers or admins can create classes")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, Invalid(CodeInvalidFields, "Class name is required")
	}

	students := make([]string, 0, len(req.Students))
	for _, id := range req.Students {
		if id != ident.ID && !containsID(students, id) {
			students = append(students, id)
		}
	}
	if len(students) > 0 {
		found, err := s.store.GetUsers(ctx, students)
		if err != nil {
			return nil, Internal(err, "An error occurred while creating the class")
		}
		if len(found) != len(students) {
			return nil, Invalid(CodeInvalidFields, "One or more user IDs are invalid")
		}
	}

	token, err := randomToken(16)
	if err != nil {
		return nil, Internal(err, "An error occurred while creating the class")
	}
	class := &models.Class{
		ID:              uuid.NewString(),
		Name:            name,
		TeacherID:       ident.ID,
		Students:        students,
		QuestionPacks:   []string{},
		Exams:           []string{},
		InvitationToken: token,
		InvitationLink:  s.frontendURL + "/join-class/" + token,
	}
	if err := s.store.CreateClass(ctx, class); err != nil {
		return nil, Internal(err, "An error occurred while creating the class")
	}
	return class, nil
}

func (s *ClassService) ListForUser(ctx context.Context, ident *models.Identity) ([]ClassView, error) {
	classes, err := s.store.ListClassesForUser(ctx, ident.ID)
	if err != nil {
		return nil, Internal(err, "An error occurred while fetching the classes")
	}
	views := make([]ClassView, 0, len(classes))
	for i := range classes {
		v, err := s.expand(ctx, &classes[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

func (s *ClassService) Get(ctx context.Context, ident *models.Identity, classID string) (*ClassView, error) {
	class, err := s.memberClass(ctx, ident, classID, "You are not authorized to view this class")
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, class)
}

func (s *ClassService) Members(ctx context.Context, ident *models.Identity, classID string) (*ClassMembers, error) {
	class, err := s.memberClass(ctx, ident, classID, "You are not authorized to view the members of this class")
	if err != nil {
		return nil, err
	}
	v, err := s.expand(ctx, class)
	if err != nil {
		return nil, err
	}
	return &ClassMembers{Teacher: v.Teacher, Students: v.Students}, nil
}

func (s *ClassService) Invite(ctx context.Context, ident *models.Identity, classID, studentID string) (*models.Class, error) {
	if err := s.requireTeacher(ctx, ident, classID, "You are not authorized to invite students to this class"); err != nil {
		return nil, err
	}
	student, err := s.store.GetUser(ctx, studentID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, Internal(err, "An error occurred while inviting the student")
	}
	if student == nil || student.Role != models.RoleStudent {
		return nil, NotFound(CodeNotFound, "Student not found or invalid role")
	}

	return updateClass(ctx, s.store, classID, func(c *models.Class) error {
		if c.HasStudent(studentID) {
			return Invalid(CodeClass, "Student is already in the class")
		}
		c.Students = append(c.Students, studentID)
		return nil
	})
}

// JoinByInvite adds the caller to the class behind the invitation token. joined is false
// when the caller already belonged to it.
func (s *ClassService) JoinByInvite(ctx context.Context, ident *models.Identity, token string) (class *models.Class, joined bool, err error) {
	class, err = s.store.GetClassByInvitation(ctx, token)
	if err != nil {
		return nil, false, lookupErr(err, CodeClass, "Class not found or invalid invite link")
	}

	class, err = updateClass(ctx, s.store, class.ID, func(c *models.Class) error {
		if c.IsMember(ident.ID) {
			return nil
		}
		c.Students = append(c.Students, ident.ID)
		joined = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return class, joined, nil
}

func (s *ClassService) RemoveStudent(ctx context.Context, ident *models.Identity, classID, studentID string) (*models.Class, error) {
	if err := s.requireTeacher(ctx, ident, classID, "You are not authorized to remove students from this class"); err != nil {
		return nil, err
	}
	return updateClass(ctx, s.store, classID, func(c *models.Class) error {
		if !c.HasStudent(studentID) {
			return NotFound(CodeNotFound, "Student not found in this class")
		}
		c.Students = models.Without(c.Students, studentID)
		return nil
	})
}

func (s *ClassService) Delete(ctx context.Context, ident *models.Identity, classID string) error {
	class, err := s.store.GetClass(ctx, classID)
	if err != nil {
		return lookupErr(err, CodeNotFound, "Class not found")
	}
	if !class.IsTeacher(ident.ID) && !ident.IsAdmin() {
		return Forbidden(CodeForbidden, "You are not authorized to delete this class")
	}
	if err := s.store.DeleteClass(ctx, classID); err != nil {
		return lookupErr(err, CodeNotFound, "Class not found")
	}
	return nil
}

func (s *ClassService) memberClass(ctx context.Context, ident *models.Identity, classID, denied string) (*models.Class, error) {
	class, err := s.store.GetClass(ctx, classID)
	if err != nil {
		return nil, lookupErr(err, CodeNotFound, "Class not found")
	}
	if !class.IsMember(ident.ID) {
		return nil, Forbidden(CodeForbidden, denied)
	}
	return class, nil
}

// requireTeacher reports a missing class as Forbidden, like a class taught by someone else.
func (s *ClassService) requireTeacher(ctx context.Context, ident *models.Identity, classID, denied string) error {
	class, err := s.store.GetClass(ctx, classID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return Internal(err, "An error occurred while updating the class")
	}
	if class == nil || !class.IsTeacher(ident.ID) {
		return Forbidden(CodeForbidden, denied)
	}
	return nil
}

func (s *ClassService) expand(ctx context.Context, class *models.Class) (*ClassView, error) {
	ids := append([]string{class.TeacherID}, class.Students...)
	users, err := s.store.GetUsers(ctx, ids)
	if err != nil {
		return nil, Internal(err, "An error occurred while fetching the class")
	}
	byID := make(map[string]models.UserSummary, len(users))
	for i := range users {
		byID[users[i].ID] = users[i].Summary()
	}

	v := &ClassView{Class: *class, Students: make([]models.UserSummary, 0, len(class.Students))}
	if t, ok := byID[class.TeacherID]; ok {
		v.Teacher = &t
	}
	for _, id := range class.Students {
		if u, ok := byID[id]; ok {
			v.Students = append(v.Students, u)
		}
	}
	return v, nil
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// updateClass runs fn under the store's class lock, passing service errors from fn
// through unchanged.
func updateClass(ctx context.Context, store storage.ClassStore, classID string, fn func(*models.Class) error) (*models.Class, error) {
	class, err := store.UpdateClass(ctx, classID, fn)
	if err != nil {
		var se *Error
		if errors.As(err, &se) {
			return nil, se
		}
		return nil, lookupErr(err, CodeNotFound, "Class not found")
	}
	return class, nil
}
