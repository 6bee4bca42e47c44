package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"

	AccountLocal  = "LOCAL"
	AccountGoogle = "GOOGLE"
)

var Roles = []string{RoleStudent, RoleTeacher, RoleAdmin}

func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role" gorm:"not null;default:'student'"`
	PhoneNumber  string    `json:"phoneNumber"`
	Gender       string    `json:"gender"`
	Image        string    `json:"image"`
	Type         string    `json:"type" gorm:"not null;default:'LOCAL'"` // LOCAL, GOOGLE
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(pwd))
}

// Summary is the public projection used when a user is expanded inside another record.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Image:    u.Image,
		Role:     u.Role,
	}
}

type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Image    string `json:"image,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Identity is the caller resolved from a bearer credential.
type Identity struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	Email    string `json:"email"`
	Username string `json:"name"`
}

func (i Identity) IsAdmin() bool   { return i.Role == RoleAdmin }
func (i Identity) IsTeacher() bool { return i.Role == RoleTeacher }

// CanAuthor reports whether the identity may create teaching content.
func (i Identity) CanAuthor() bool { return i.IsTeacher() || i.IsAdmin() }
