package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devtrail/bootcamp-api/internal/domain/entity"
	"github.com/devtrail/bootcamp-api/internal/domain/repository"
	"github.com/devtrail/bootcamp-api/pkg/query"
)

type BootcampRepository struct {
	client *mongo.Client
	db     *mongo.Database
	c      *mongo.Collection
}

func NewBootcampRepository(client *mongo.Client, db *mongo.Database) *BootcampRepository {
	return &BootcampRepository{client: client, db: db, c: db.Collection(bootcampsColl)}
}

func (r *BootcampRepository) Create(ctx context.Context, b *entity.Bootcamp) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	res, err := r.c.InsertOne(ctx, b)
	if err != nil {
		return mapErr(err)
	}
	b.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *BootcampRepository) GetByID(ctx context.Context, id string) (*entity.Bootcamp, error) {
	objID, err := oid(id)
	if err != nil {
		return nil, err
	}
	var b entity.Bootcamp
	if err := r.c.FindOne(ctx, bson.M{"_id": objID}).Decode(&b); err != nil {
		return nil, mapErr(err)
	}
	return &b, nil
}

func (r *BootcampRepository) ListByOwner(ctx context.Context, userID string) ([]entity.Bootcamp, error) {
	objID, err := oid(userID)
	if err != nil {
		return nil, err
	}
	cur, err := r.c.Find(ctx, bson.M{"user": objID})
	if err != nil {
		return nil, mapErr(err)
	}
	defer cur.Close(ctx)
	bootcamps := []entity.Bootcamp{}
	if err := cur.All(ctx, &bootcamps); err != nil {
		return nil, err
	}
	return bootcamps, nil
}

func (r *BootcampRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) (*entity.Bootcamp, error) {
	objID, err := oid(id)
	if err != nil {
		return nil, err
	}
	var b entity.Bootcamp
	err = r.c.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&b)
	if err != nil {
		return nil, mapErr(err)
	}
	return &b, nil
}

func (r *BootcampRepository) UpdateAggregates(ctx context.Context, id string, fields map[string]any) error {
	objID, err := oid(id)
	if err != nil {
		return err
	}
	_, err = r.c.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": fields})
	return mapErr(err)
}

// DeleteCascade removes a bootcamp together with its courses and reviews.
// On replica sets the three deletes share a transaction; standalone
// deployments reject sessions with transactions, so the deletes fall back to
// running sequentially.
func (r *BootcampRepository) DeleteCascade(ctx context.Context, id string) error {
	objID, err := oid(id)
	if err != nil {
		return err
	}

	session, err := r.client.StartSession()
	if err != nil {
		return r.deleteCascadePlain(ctx, objID)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, r.deleteCascadePlain(sc, objID)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if err != nil {
		// Transactions need a replica set; an aborted transaction left
		// nothing behind, so retry the deletes without one.
		return r.deleteCascadePlain(ctx, objID)
	}
	return nil
}

func (r *BootcampRepository) deleteCascadePlain(ctx context.Context, objID primitive.ObjectID) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return mapErr(err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	if _, err := r.db.Collection(coursesColl).DeleteMany(ctx, bson.M{"bootcamp": objID}); err != nil {
		return err
	}
	_, err = r.db.Collection(reviewsColl).DeleteMany(ctx, bson.M{"bootcamp": objID})
	return err
}

func (r *BootcampRepository) WithinRadius(ctx context.Context, lng, lat, radians float64) ([]entity.Bootcamp, error) {
	filter := bson.M{
		"location": bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{bson.A{lng, lat}, radians},
			},
		},
	}
	cur, err := r.c.Find(ctx, filter)
	if err != nil {
		return nil, mapErr(err)
	}
	defer cur.Close(ctx)
	bootcamps := []entity.Bootcamp{}
	if err := cur.All(ctx, &bootcamps); err != nil {
		return nil, err
	}
	return bootcamps, nil
}

func (r *BootcampRepository) List(ctx context.Context, params query.ListParams, populate *repository.Populate) (query.ListResult, error) {
	return findAdvanced(ctx, r.db, bootcampsColl, params, populate)
}
