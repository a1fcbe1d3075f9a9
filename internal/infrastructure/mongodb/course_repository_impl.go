package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devtrail/bootcamp-api/internal/domain/entity"
	"github.com/devtrail/bootcamp-api/internal/domain/repository"
	"github.com/devtrail/bootcamp-api/pkg/query"
)

type CourseRepository struct {
	db *mongo.Database
	c  *mongo.Collection
}

func NewCourseRepository(db *mongo.Database) *CourseRepository {
	return &CourseRepository{db: db, c: db.Collection(coursesColl)}
}

func (r *CourseRepository) Create(ctx context.Context, course *entity.Course) error {
	if course.MinimumSkill == "" {
		course.MinimumSkill = entity.SkillBeginner
	}
	if course.Image == "" {
		course.Image = entity.DefaultCourseImage
	}
	if course.CreatedAt.IsZero() {
		course.CreatedAt = time.Now().UTC()
	}
	res, err := r.c.InsertOne(ctx, course)
	if err != nil {
		return mapErr(err)
	}
	course.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *CourseRepository) GetByID(ctx context.Context, id string) (*entity.Course, error) {
	objID, err := oid(id)
	if err != nil {
		return nil, err
	}
	var course entity.Course
	if err := r.c.FindOne(ctx, bson.M{"_id": objID}).Decode(&course); err != nil {
		return nil, mapErr(err)
	}
	return &course, nil
}

func (r *CourseRepository) ListByBootcamp(ctx context.Context, bootcampID string) ([]entity.Course, error) {
	objID, err := oid(bootcampID)
	if err != nil {
		return nil, err
	}
	cur, err := r.c.Find(ctx, bson.M{"bootcamp": objID})
	if err != nil {
		return nil, mapErr(err)
	}
	defer cur.Close(ctx)
	courses := []entity.Course{}
	if err := cur.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *CourseRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) (*entity.Course, error) {
	objID, err := oid(id)
	if err != nil {
		return nil, err
	}
	var course entity.Course
	err = r.c.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&course)
	if err != nil {
		return nil, mapErr(err)
	}
	return &course, nil
}

func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	objID, err := oid(id)
	if err != nil {
		return err
	}
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return mapErr(err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CourseRepository) AverageTuition(ctx context.Context, bootcampID string) (float64, bool, error) {
	return average(ctx, r.c, bootcampID, "$tuition")
}

func (r *CourseRepository) List(ctx context.Context, params query.ListParams, populate *repository.Populate) (query.ListResult, error) {
	return findAdvanced(ctx, r.db, coursesColl, params, populate)
}

// average runs the $match/$group/$avg pipeline shared by the course and review
// aggregates.
func average(ctx context.Context, c *mongo.Collection, bootcampID, field string) (float64, bool, error) {
	objID, err := oid(bootcampID)
	if err != nil {
		return 0, false, err
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"bootcamp": objID}}},
		{{Key: "$group", Value: bson.M{
			"_id": "$bootcamp",
			"avg": bson.M{"$avg": field},
		}}},
	}
	cur, err := c.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, false, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Avg float64 `bson:"avg"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, false, err
	}
	if len(rows) == 0 {
		return 0, false, nil
	}
	return rows[0].Avg, true, nil
}
