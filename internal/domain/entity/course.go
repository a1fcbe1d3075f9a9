package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Minimum skill levels accepted for a course.
const (
	SkillBeginner     = "Beginner"
	SkillIntermediate = "Intermediate"
	SkillAmateur      = "Amateur"
	SkillExpert       = "Expert"
)

const DefaultCourseImage = "/images/course-placeholder.png"

// Course belongs to one bootcamp and records its creating user. Its tuition
// feeds the bootcamp's averageCost aggregate.
type Course struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title                string             `bson:"title" json:"title"`
	Description          string             `bson:"description" json:"description"`
	Image                string             `bson:"image" json:"image"`
	Weeks                int                `bson:"weeks" json:"weeks"`
	Tuition              float64            `bson:"tuition" json:"tuition"`
	MinimumSkill         string             `bson:"minimumSkill" json:"minimumSkill"`
	ScholarshipAvailable bool               `bson:"scholarshipAvailable" json:"scholarshipAvailable"`
	Bootcamp             primitive.ObjectID `bson:"bootcamp" json:"bootcamp"`
	User                 primitive.ObjectID `bson:"user" json:"user"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
}

// ValidSkill reports whether s is one of the minimumSkill enum values.
func ValidSkill(s string) bool {
	switch s {
	case SkillBeginner, SkillIntermediate, SkillAmateur, SkillExpert:
		return true
	}
	return false
}
