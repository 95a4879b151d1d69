package user

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/campushub/api/internal/domain/course"
)

const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
	RoleStudent    = "student"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID       string             `bson:"userid" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"` // never expose hash in JSON
	Role         string             `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Profile is the projected view returned by GET /users/:userId.
type Profile struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Role    string          `json:"role"`
	Classes []course.Course `json:"classes"`
}

func (u User) Profile(classes []course.Course) Profile {
	if classes == nil {
		classes = []course.Course{}
	}

	return Profile{
		ID:      u.UserID,
		Name:    u.Name,
		Email:   u.Email,
		Role:    u.Role,
		Classes: classes,
	}
}
