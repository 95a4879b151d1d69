package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campushub/api/internal/domain/course"
	"github.com/campushub/api/internal/domain/user"
	"github.com/campushub/api/internal/observability"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailAlreadyUsed = errors.New("email already in use")
)

type UsersRepo struct {
	users   *mongo.Collection
	courses string // lookup target collection name
	prom    *observability.Prom
}

// NewUsersRepo wires the users collection. prom may be nil (tests).
func NewUsersRepo(database *mongo.Database, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		users:   database.Collection("users"),
		courses: "courses",
		prom:    prom,
	}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom == nil {
		return fn()
	}

	return r.prom.ObserveDB(op, fn)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		return r.users.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&u)
	})

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByUserID(ctx context.Context, userID string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_userid", func() error {
		return r.users.FindOne(ctx, bson.D{{Key: "userid", Value: userID}}).Decode(&u)
	})

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	err := r.observe("users.create", func() error {
		_, insertErr := r.users.InsertOne(ctx, u)
		return insertErr
	})

	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, ErrEmailAlreadyUsed
		}

		return user.User{}, err
	}

	return u, nil
}

// TeachingClasses returns the courses whose instructor field references
// the given userid. Callers only invoke it for student subjects; see
// DESIGN.md on the student/instructor join question.
func (r *UsersRepo) TeachingClasses(ctx context.Context, userID string) ([]course.Course, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "userid", Value: userID}}}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: r.courses},
			{Key: "localField", Value: "userid"},
			{Key: "foreignField", Value: "instructor"},
			{Key: "as", Value: "teachingClasses"},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "teachingClasses", Value: 1},
		}}},
	}

	var rows []struct {
		TeachingClasses []course.Course `bson:"teachingClasses"`
	}

	err := r.observe("users.teaching_classes", func() error {
		cursor, aggErr := r.users.Aggregate(ctx, pipeline)

		if aggErr != nil {
			return aggErr
		}

		defer cursor.Close(ctx)

		return cursor.All(ctx, &rows)
	})

	if err != nil {
		return nil, err
	}

	classes := []course.Course{}

	for _, row := range rows {
		classes = append(classes, row.TeachingClasses...)
	}

	return classes, nil
}
