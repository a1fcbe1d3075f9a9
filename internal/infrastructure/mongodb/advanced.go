package mongodb

import (
	"context"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devtrail/bootcamp-api/internal/domain/repository"
	"github.com/devtrail/bootcamp-api/pkg/query"
)

// Collection names, shared by the repositories and the index bootstrap.
const (
	usersColl      = "users"
	bootcampsColl  = "bootcamps"
	coursesColl    = "courses"
	reviewsColl    = "reviews"
	upgradeReqColl = "upgrade_requests"
)

// sensitive fields are excluded from advanced-list projections regardless of
// what select asks for.
var sensitiveFields = map[string]bool{
	"password":            true,
	"resetPasswordToken":  true,
	"resetPasswordExpire": true,
}

// findAdvanced is the list/filter/paginate executor behind every List
// repository method. It applies the translated filter, projection, sort and
// window, computes the unconditional and filtered counts, and optionally
// inlines a related document into each item.
func findAdvanced(ctx context.Context, db *mongo.Database, coll string, p query.ListParams, populate *repository.Populate) (query.ListResult, error) {
	c := db.Collection(coll)

	total, err := c.CountDocuments(ctx, bson.M{})
	if err != nil {
		return query.ListResult{}, err
	}

	filter := buildFilter(p.Filter)
	filtered, err := c.CountDocuments(ctx, filter)
	if err != nil {
		return query.ListResult{}, err
	}

	opts := options.Find().
		SetProjection(buildProjection(p.Select)).
		SetSort(buildSort(p.Sort)).
		SetSkip(int64((p.Page - 1) * p.Limit)).
		SetLimit(int64(p.Limit))

	cur, err := c.Find(ctx, filter, opts)
	if err != nil {
		return query.ListResult{}, err
	}
	defer cur.Close(ctx)

	items := make([]map[string]any, 0, p.Limit)
	if err := cur.All(ctx, &items); err != nil {
		return query.ListResult{}, err
	}

	if populate != nil {
		if err := applyPopulate(ctx, db, items, populate); err != nil {
			return query.ListResult{}, err
		}
	}

	return query.ListResult{
		Items:      items,
		Total:      total,
		Filtered:   filtered,
		Pagination: query.PaginationFor(p.Page, p.Limit, filtered),
	}, nil
}

// buildFilter converts translated list filters into a mongo filter document.
// Equality values are cast by shape: object-id hex and booleans become their
// native types, numeric strings become doubles, everything else stays a string.
func buildFilter(filter map[string]any) bson.M {
	out := bson.M{}
	for field, v := range filter {
		switch val := v.(type) {
		case map[query.Op]float64:
			ops := bson.M{}
			for op, n := range val {
				ops["$"+string(op)] = n
			}
			out[field] = ops
		case string:
			out[field] = castEquality(val)
		default:
			out[field] = val
		}
	}
	return out
}

func castEquality(s string) any {
	if oid, err := primitive.ObjectIDFromHex(s); err == nil {
		return oid
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	return s
}

func buildProjection(selects []string) bson.M {
	if len(selects) == 0 {
		proj := bson.M{}
		for f := range sensitiveFields {
			proj[f] = 0
		}
		return proj
	}
	proj := bson.M{}
	for _, f := range selects {
		if !sensitiveFields[f] {
			proj[f] = 1
		}
	}
	// An empty inclusive projection would return every field, so fall back
	// to excluding the sensitive ones when nothing selectable remains.
	if len(proj) == 0 {
		return buildProjection(nil)
	}
	return proj
}

func buildSort(sorts []string) bson.D {
	if len(sorts) == 0 {
		return bson.D{{Key: "createdAt", Value: -1}}
	}
	d := make(bson.D, 0, len(sorts))
	for _, f := range sorts {
		if len(f) > 1 && f[0] == '-' {
			d = append(d, bson.E{Key: f[1:], Value: -1})
		} else {
			d = append(d, bson.E{Key: f, Value: 1})
		}
	}
	return d
}

// applyPopulate resolves a relation in a second query and joins it in memory.
// LocalField joins replace the stored reference with the referenced document;
// ForeignField joins attach an array of referencing documents.
func applyPopulate(ctx context.Context, db *mongo.Database, items []map[string]any, pop *repository.Populate) error {
	if len(items) == 0 {
		return nil
	}

	proj := buildProjection(pop.Select)

	if pop.LocalField != "" {
		ids := make([]primitive.ObjectID, 0, len(items))
		seen := map[primitive.ObjectID]bool{}
		for _, it := range items {
			if oid, ok := it[pop.LocalField].(primitive.ObjectID); ok && !seen[oid] {
				seen[oid] = true
				ids = append(ids, oid)
			}
		}
		if len(ids) == 0 {
			return nil
		}
		docs, err := fetchDocs(ctx, db, pop.From, bson.M{"_id": bson.M{"$in": ids}}, proj)
		if err != nil {
			return err
		}
		byID := map[primitive.ObjectID]map[string]any{}
		for _, d := range docs {
			if oid, ok := d["_id"].(primitive.ObjectID); ok {
				byID[oid] = d
			}
		}
		for _, it := range items {
			if oid, ok := it[pop.LocalField].(primitive.ObjectID); ok {
				if doc, ok := byID[oid]; ok {
					it[pop.As] = doc
				}
			}
		}
		return nil
	}

	// Reverse join: gather children referencing each listed document.
	ids := make([]primitive.ObjectID, 0, len(items))
	for _, it := range items {
		if oid, ok := it["_id"].(primitive.ObjectID); ok {
			ids = append(ids, oid)
		}
	}
	docs, err := fetchDocs(ctx, db, pop.From, bson.M{pop.ForeignField: bson.M{"$in": ids}}, proj)
	if err != nil {
		return err
	}
	grouped := map[primitive.ObjectID][]map[string]any{}
	for _, d := range docs {
		if oid, ok := d[pop.ForeignField].(primitive.ObjectID); ok {
			grouped[oid] = append(grouped[oid], d)
		}
	}
	for _, it := range items {
		if oid, ok := it["_id"].(primitive.ObjectID); ok {
			children := grouped[oid]
			if children == nil {
				children = []map[string]any{}
			}
			it[pop.As] = children
		}
	}
	return nil
}

func fetchDocs(ctx context.Context, db *mongo.Database, coll string, filter, proj bson.M) ([]map[string]any, error) {
	cur, err := db.Collection(coll).Find(ctx, filter, options.Find().SetProjection(proj))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []map[string]any
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// oid parses a hex object id, mapping malformed input to ErrNotFound so every
// bad id surfaces the same way a missing document does.
func oid(id string) (primitive.ObjectID, error) {
	v, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, repository.ErrNotFound
	}
	return v, nil
}

// mapErr normalizes driver errors to repository sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if err == mongo.ErrNoDocuments {
		return repository.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	return err
}
