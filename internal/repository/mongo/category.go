package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/GeekyBear/inventory-api/internal/domain"
	apperrors "github.com/GeekyBear/inventory-api/pkg/errors"
	"github.com/GeekyBear/inventory-api/pkg/pagination"
)

// CategoryRepository implements repository.CategoryRepository backed by the
// categories collection.
type CategoryRepository struct {
	categories *mongo.Collection
}

// NewCategoryRepository creates a MongoDB-backed category repository.
func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{categories: db.Collection(categoriesCollection)}
}

// Create inserts a new category. Unique indexes on name and slug turn
// concurrent duplicates into an already-exists error.
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	res, err := r.categories.InsertOne(ctx, c)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("category", "name", c.Name)
		}
		return fmt.Errorf("insert category: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid
	}
	return nil
}

// GetByID retrieves a category by its identifier.
func (r *CategoryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Category, error) {
	return r.findOne(ctx, bson.M{"_id": id}, id.Hex())
}

// GetBySlug retrieves a category by its URL-friendly slug.
func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return r.findOne(ctx, bson.M{"slug": slug}, slug)
}

func (r *CategoryRepository) findOne(ctx context.Context, filter bson.M, ref string) (*domain.Category, error) {
	var c domain.Category
	err := r.categories.FindOne(ctx, filter).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("category", ref)
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &c, nil
}

// Update replaces the stored document with the given category.
func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	c.UpdatedAt = time.Now().UTC()

	res, err := r.categories.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("category", "name", c.Name)
		}
		return fmt.Errorf("replace category: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("category", c.ID.Hex())
	}
	return nil
}

// SoftDelete marks the category inactive without removing it.
func (r *CategoryRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.categories.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"isActive":  false,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("soft delete category: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("category", id.Hex())
	}
	return nil
}

// Delete removes the category permanently.
func (r *CategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.categories.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound("category", id.Hex())
	}
	return nil
}

// Search runs the filtered, sorted, paginated category query. Categories
// need no join or derived fields, so a plain Find with a matching
// CountDocuments covers it.
func (r *CategoryRepository) Search(ctx context.Context, q domain.CategorySearchQuery) ([]domain.Category, int64, error) {
	predicate := buildCategoryPredicate(q)

	total, err := r.categories.CountDocuments(ctx, predicate)
	if err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	params := pagination.New(q.Page, q.Limit)
	opts := options.Find().
		SetSort(resolveCategorySort(q.SortBy, q.SortOrder)).
		SetSkip(int64(params.Skip)).
		SetLimit(int64(params.Limit))

	cursor, err := r.categories.Find(ctx, predicate, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("search categories: %w", err)
	}
	defer cursor.Close(ctx)

	var categories []domain.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, 0, fmt.Errorf("decode categories: %w", err)
	}

	return categories, total, nil
}

// Suggest returns up to limit active category names containing the text.
func (r *CategoryRepository) Suggest(ctx context.Context, text string, limit int) ([]string, error) {
	filter := bson.M{
		"isActive": true,
		"name":     containsRegex(text),
	}
	opts := options.Find().
		SetProjection(bson.M{"name": 1}).
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.categories.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("suggest categories: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Name string `bson:"name"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode category suggestions: %w", err)
	}

	names := make([]string, 0, len(docs))
	for _, doc := range docs {
		names = append(names, doc.Name)
	}
	return dedupeSuggestions(names, limit), nil
}
