package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	productsCollection   = "products"
	categoriesCollection = "categories"

	connectTimeout = 10 * time.Second
)

// Connect opens a client against the given URI, verifies connectivity, and
// returns a handle to the named database.
func Connect(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return client, client.Database(database), nil
}

// EnsureIndexes creates the indexes the repositories depend on. SKU
// uniqueness and category name/slug uniqueness are enforced here rather than
// in application code so concurrent writers cannot race past the check.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	productIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sku", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "categoryId", Value: 1}}},
		{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "brand", Value: 1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
	}
	if _, err := db.Collection(productsCollection).Indexes().CreateMany(ctx, productIndexes); err != nil {
		return fmt.Errorf("create product indexes: %w", err)
	}

	categoryIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := db.Collection(categoriesCollection).Indexes().CreateMany(ctx, categoryIndexes); err != nil {
		return fmt.Errorf("create category indexes: %w", err)
	}

	return nil
}
