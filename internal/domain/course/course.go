package course

import "go.mongodb.org/mongo-driver/bson/primitive"

// Course lives in the courses collection. This service only reads it
// through the teaching-classes lookup; writes happen elsewhere.
type Course struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title      string             `bson:"title" json:"title"`
	Instructor string             `bson:"instructor" json:"instructor"`
	Term       string             `bson:"term,omitempty" json:"term,omitempty"`
}
