package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/devtrail/bootcamp-api/internal/domain/entity"
	"github.com/devtrail/bootcamp-api/internal/domain/repository"
	"github.com/devtrail/bootcamp-api/pkg/query"
)

type UpgradeRequestRepository struct {
	db *mongo.Database
	c  *mongo.Collection
}

func NewUpgradeRequestRepository(db *mongo.Database) *UpgradeRequestRepository {
	return &UpgradeRequestRepository{db: db, c: db.Collection(upgradeReqColl)}
}

func (r *UpgradeRequestRepository) Create(ctx context.Context, req *entity.UpgradeRequest) error {
	if req.Role == "" {
		req.Role = entity.RolePublisher
	}
	if req.Status == "" {
		req.Status = entity.StatusPending
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	res, err := r.c.InsertOne(ctx, req)
	if err != nil {
		return mapErr(err)
	}
	req.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *UpgradeRequestRepository) GetByID(ctx context.Context, id string) (*entity.UpgradeRequest, error) {
	objID, err := oid(id)
	if err != nil {
		return nil, err
	}
	var req entity.UpgradeRequest
	if err := r.c.FindOne(ctx, bson.M{"_id": objID}).Decode(&req); err != nil {
		return nil, mapErr(err)
	}
	return &req, nil
}

func (r *UpgradeRequestRepository) ListByUser(ctx context.Context, userID string) ([]entity.UpgradeRequest, error) {
	objID, err := oid(userID)
	if err != nil {
		return nil, err
	}
	cur, err := r.c.Find(ctx, bson.M{"user": objID})
	if err != nil {
		return nil, mapErr(err)
	}
	defer cur.Close(ctx)
	reqs := []entity.UpgradeRequest{}
	if err := cur.All(ctx, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *UpgradeRequestRepository) Delete(ctx context.Context, id string) error {
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

func (r *UpgradeRequestRepository) List(ctx context.Context, params query.ListParams, populate *repository.Populate) (query.ListResult, error) {
	return findAdvanced(ctx, r.db, upgradeReqColl, params, populate)
}
