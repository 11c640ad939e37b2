package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/GeekyBear/inventory-api/internal/domain"
	apperrors "github.com/GeekyBear/inventory-api/pkg/errors"
	"github.com/GeekyBear/inventory-api/pkg/pagination"
)

// ProductRepository implements repository.ProductRepository backed by the
// products collection, with category joins against the categories collection.
type ProductRepository struct {
	products   *mongo.Collection
	categories *mongo.Collection
}

// NewProductRepository creates a MongoDB-backed product repository.
func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{
		products:   db.Collection(productsCollection),
		categories: db.Collection(categoriesCollection),
	}
}

// Create inserts a new product. The unique SKU index turns concurrent
// duplicates into an already-exists error.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	res, err := r.products.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("product", "sku", p.SKU)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

// GetByID retrieves a product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	var p domain.Product
	err := r.products.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("product", id.Hex())
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &p, nil
}

// Update replaces the stored document with the given product.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()

	res, err := r.products.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("product", "sku", p.SKU)
		}
		return fmt.Errorf("replace product: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("product", p.ID.Hex())
	}
	return nil
}

// SoftDelete marks the product inactive, keeping the document for audit and
// for hard-delete later.
func (r *ProductRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.products.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"isActive":  false,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("soft delete product: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("product", id.Hex())
	}
	return nil
}

// Delete removes the product permanently.
func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound("product", id.Hex())
	}
	return nil
}

// Search runs the count and data pipelines built from one shared stage
// prefix and returns the requested page with the total match count.
func (r *ProductRepository) Search(ctx context.Context, q domain.ProductSearchQuery) ([]domain.Product, int64, error) {
	total, err := r.count(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	params := pagination.New(q.Page, q.Limit)
	cursor, err := r.products.Aggregate(ctx, productDataPipeline(q, params))
	if err != nil {
		return nil, 0, fmt.Errorf("search products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []domain.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}

	return products, total, nil
}

func (r *ProductRepository) count(ctx context.Context, q domain.ProductSearchQuery) (int64, error) {
	cursor, err := r.products.Aggregate(ctx, productCountPipeline(q))
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	defer cursor.Close(ctx)

	// $count emits no document at all for an empty match set.
	var results []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("decode product count: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

// CountByCategory counts active products referencing the given category.
func (r *ProductRepository) CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	count, err := r.products.CountDocuments(ctx, bson.M{
		"categoryId": categoryID,
		"isActive":   true,
	})
	if err != nil {
		return 0, fmt.Errorf("count products by category: %w", err)
	}
	return count, nil
}
