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

type ReviewRepository struct {
	db *mongo.Database
	c  *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{db: db, c: db.Collection(reviewsColl)}
}

func (r *ReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	res, err := r.c.InsertOne(ctx, review)
	if err != nil {
		return mapErr(err)
	}
	review.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	objID, err := oid(id)
	if err != nil {
		return nil, err
	}
	var review entity.Review
	if err := r.c.FindOne(ctx, bson.M{"_id": objID}).Decode(&review); err != nil {
		return nil, mapErr(err)
	}
	return &review, nil
}

func (r *ReviewRepository) ListByBootcamp(ctx context.Context, bootcampID string) ([]entity.Review, error) {
	objID, err := oid(bootcampID)
	if err != nil {
		return nil, err
	}
	cur, err := r.c.Find(ctx, bson.M{"bootcamp": objID})
	if err != nil {
		return nil, mapErr(err)
	}
	defer cur.Close(ctx)
	reviews := []entity.Review{}
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *ReviewRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) (*entity.Review, error) {
	objID, err := oid(id)
	if err != nil {
		return nil, err
	}
	var review entity.Review
	err = r.c.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&review)
	if err != nil {
		return nil, mapErr(err)
	}
	return &review, nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
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

func (r *ReviewRepository) AverageRating(ctx context.Context, bootcampID string) (float64, bool, error) {
	return average(ctx, r.c, bootcampID, "$rating")
}

func (r *ReviewRepository) List(ctx context.Context, params query.ListParams, populate *repository.Populate) (query.ListResult, error) {
	return findAdvanced(ctx, r.db, reviewsColl, params, populate)
}
