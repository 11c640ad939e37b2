// Package main implements a standalone seed script that populates the
// inventory database with sample categories and products for local
// development and manual testing of the search endpoints.
//
// Run: cd scripts/seed && go run main.go
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	productsPerCategory = 250
	batchSize           = 500
)

var categories = []struct {
	Name        string
	Description string
}{
	{"Electronics", "Electronic devices, components, and accessories"},
	{"Home & Garden", "Tools and supplies for home improvement and gardening"},
	{"Sports & Outdoors", "Equipment and apparel for sports and outdoor activity"},
	{"Office Supplies", "Stationery, furniture, and consumables for the office"},
}

var (
	adjectives = []string{"Pro", "Compact", "Wireless", "Heavy-Duty", "Ergonomic", "Portable", "Smart", "Classic"}
	nouns      = []string{"Widget", "Stand", "Charger", "Organizer", "Lamp", "Speaker", "Toolkit", "Monitor"}
	brands     = []string{"Acme", "Globex", "Initech", "Umbrella", "Stark Industries", ""}
	tagPool    = []string{"gaming", "office", "outdoor", "budget", "premium", "eco", "bestseller"}
)

func main() {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DATABASE")
	if dbName == "" {
		dbName = "inventory"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("connect mongodb: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	db := client.Database(dbName)
	rng := rand.New(rand.NewSource(42))

	categoryIDs, err := seedCategories(ctx, db)
	if err != nil {
		log.Fatalf("seed categories: %v", err)
	}
	log.Printf("seeded %d categories", len(categoryIDs))

	total, err := seedProducts(ctx, db, categoryIDs, rng)
	if err != nil {
		log.Fatalf("seed products: %v", err)
	}
	log.Printf("seeded %d products", total)
}

func seedCategories(ctx context.Context, db *mongo.Database) ([]primitive.ObjectID, error) {
	coll := db.Collection("categories")
	now := time.Now().UTC()

	ids := make([]primitive.ObjectID, 0, len(categories))
	for _, c := range categories {
		id := primitive.NewObjectID()
		slug := strings.ReplaceAll(strings.ToLower(strings.ReplaceAll(c.Name, "&", "")), "  ", " ")
		slug = strings.ReplaceAll(strings.TrimSpace(slug), " ", "-")

		_, err := coll.UpdateOne(ctx,
			bson.M{"name": c.Name},
			bson.M{"$setOnInsert": bson.M{
				"_id":         id,
				"name":        c.Name,
				"description": c.Description,
				"slug":        slug,
				"isActive":    true,
				"createdAt":   now,
				"updatedAt":   now,
			}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return nil, fmt.Errorf("upsert category %q: %w", c.Name, err)
		}

		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := coll.FindOne(ctx, bson.M{"name": c.Name}).Decode(&doc); err != nil {
			return nil, fmt.Errorf("read back category %q: %w", c.Name, err)
		}
		ids = append(ids, doc.ID)
	}
	return ids, nil
}

func seedProducts(ctx context.Context, db *mongo.Database, categoryIDs []primitive.ObjectID, rng *rand.Rand) (int, error) {
	coll := db.Collection("products")
	now := time.Now().UTC()

	var batch []any
	total := 0
	for ci, categoryID := range categoryIDs {
		for i := 0; i < productsPerCategory; i++ {
			name := fmt.Sprintf("%s %s %d",
				adjectives[rng.Intn(len(adjectives))],
				nouns[rng.Intn(len(nouns))],
				i+1,
			)
			quantity := rng.Intn(200)

			batch = append(batch, bson.M{
				"name":              name,
				"description":       fmt.Sprintf("Seeded sample listing for %s, category %d.", name, ci+1),
				"price":             float64(rng.Intn(99999)+100) / 100,
				"sku":               fmt.Sprintf("SEED-%d-%04d", ci+1, i+1),
				"quantity":          quantity,
				"lowStockThreshold": 5,
				"categoryId":        categoryID,
				"brand":             brands[rng.Intn(len(brands))],
				"tags":              pickTags(rng),
				"images":            []string{},
				"isActive":          rng.Intn(10) > 0,
				"isFeatured":        rng.Intn(10) == 0,
				"createdAt":         now.Add(-time.Duration(rng.Intn(90*24)) * time.Hour),
				"updatedAt":         now,
			})

			if len(batch) == batchSize {
				if _, err := coll.InsertMany(ctx, batch); err != nil {
					return total, fmt.Errorf("insert product batch: %w", err)
				}
				total += len(batch)
				batch = batch[:0]
			}
		}
	}

	if len(batch) > 0 {
		if _, err := coll.InsertMany(ctx, batch); err != nil {
			return total, fmt.Errorf("insert final product batch: %w", err)
		}
		total += len(batch)
	}
	return total, nil
}

func pickTags(rng *rand.Rand) []string {
	n := rng.Intn(3) + 1
	tags := make([]string, 0, n)
	seen := map[string]bool{}
	for len(tags) < n {
		tag := tagPool[rng.Intn(len(tagPool))]
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}
