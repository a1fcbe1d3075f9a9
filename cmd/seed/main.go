// Seeder loads the fixture documents under _data/ into MongoDB.
//
//	go run ./cmd/seed -i   import all fixtures
//	go run ./cmd/seed -d   delete all seeded collections
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/devtrail/bootcamp-api/config"
	"github.com/devtrail/bootcamp-api/internal/infrastructure/mongodb"
)

var collections = []string{"users", "bootcamps", "courses", "reviews"}

func main() {
	importFlag := flag.Bool("i", false, "import fixture data")
	deleteFlag := flag.Bool("d", false, "delete seeded data")
	dataDir := flag.String("data", "_data", "fixture directory")
	flag.Parse()

	if *importFlag == *deleteFlag {
		log.Fatal("pass exactly one of -i or -d")
	}

	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	client, db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if *deleteFlag {
		for _, name := range collections {
			if err := db.Collection(name).Drop(ctx); err != nil {
				log.Fatalf("drop %s: %v", name, err)
			}
		}
		fmt.Println("data destroyed")
		return
	}

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("failed to ensure indexes: %v", err)
	}
	for _, name := range collections {
		n, err := importFile(ctx, db, *dataDir, name)
		if err != nil {
			log.Fatalf("import %s: %v", name, err)
		}
		fmt.Printf("imported %d %s\n", n, name)
	}
}

func importFile(ctx context.Context, db *mongo.Database, dir, name string) (int, error) {
	raw, err := os.ReadFile(filepath.Join(dir, name+".json"))
	if err != nil {
		return 0, err
	}
	var docs []map[string]any
	if err := json.Unmarshal(raw, &docs); err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}
	many := make([]any, 0, len(docs))
	for _, d := range docs {
		many = append(many, normalizeIDs(d))
	}
	res, err := db.Collection(name).InsertMany(ctx, many)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

// normalizeIDs turns fixture "_id", "user", and "bootcamp" hex strings into
// ObjectIDs so references line up after import.
func normalizeIDs(doc map[string]any) bson.M {
	out := bson.M{}
	for k, v := range doc {
		if s, ok := v.(string); ok && (k == "_id" || k == "user" || k == "bootcamp") {
			if oid, err := primitive.ObjectIDFromHex(s); err == nil {
				out[k] = oid
				continue
			}
		}
		out[k] = v
	}
	return out
}
