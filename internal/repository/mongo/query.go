package mongo

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/GeekyBear/inventory-api/internal/domain"
	"github.com/GeekyBear/inventory-api/pkg/pagination"
)

// relevanceScoreField is the computed field the relevance sort orders by.
const relevanceScoreField = "relevanceScore"

// containsRegex builds a case-insensitive substring matcher from raw user
// text. The text is quoted so regex metacharacters match literally.
func containsRegex(text string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"}
}

// buildProductPredicate translates the search query into a match predicate.
// Dimensions combine with AND semantics; the general-text group (query text
// plus specifications free text) combines with OR semantics internally.
// Contradictory ranges are not rejected here; they simply match nothing.
func buildProductPredicate(q domain.ProductSearchQuery) bson.M {
	var and []bson.M

	var textOr []bson.M
	if q.Query != "" {
		r := containsRegex(q.Query)
		textOr = append(textOr,
			bson.M{"name": r},
			bson.M{"description": r},
			bson.M{"brand": r},
			bson.M{"sku": r},
			bson.M{"tags": r},
		)
	}
	if q.Specifications != "" {
		// Free-text matching over specification values joins the general-text
		// OR group instead of filtering independently.
		textOr = append(textOr, specificationsClause(q.Specifications))
	}
	if len(textOr) > 0 {
		and = append(and, bson.M{"$or": textOr})
	}

	if q.Name != "" {
		and = append(and, bson.M{"name": containsRegex(q.Name)})
	}
	if q.Description != "" {
		and = append(and, bson.M{"description": containsRegex(q.Description)})
	}
	if q.Brand != "" {
		and = append(and, bson.M{"brand": containsRegex(q.Brand)})
	}
	if q.SKU != "" {
		// SKUs are stored uppercase; fold the filter to match.
		and = append(and, bson.M{"sku": containsRegex(strings.ToUpper(q.SKU))})
	}

	if q.CategoryID != nil {
		and = append(and, bson.M{"categoryId": *q.CategoryID})
	}

	if rng := rangeClause(q.MinPrice, q.MaxPrice); rng != nil {
		and = append(and, bson.M{"price": rng})
	}
	if rng := rangeClause(q.MinQuantity, q.MaxQuantity); rng != nil {
		and = append(and, bson.M{"quantity": rng})
	}

	if len(q.Tags) > 0 {
		tagOr := make([]bson.M, 0, len(q.Tags))
		for _, tag := range q.Tags {
			tagOr = append(tagOr, bson.M{"tags": containsRegex(tag)})
		}
		and = append(and, bson.M{"$or": tagOr})
	}

	if q.IsActive != nil {
		and = append(and, bson.M{"isActive": *q.IsActive})
	}
	if q.IsFeatured != nil {
		and = append(and, bson.M{"isFeatured": *q.IsFeatured})
	}

	if q.IsLowStock != nil {
		op := "$lte"
		if !*q.IsLowStock {
			op = "$gt"
		}
		and = append(and, bson.M{
			"$expr": bson.M{op: bson.A{"$quantity", "$lowStockThreshold"}},
		})
	}

	if len(and) == 0 {
		return bson.M{}
	}
	return bson.M{"$and": and}
}

// rangeClause builds an inclusive range document; either bound may be absent.
func rangeClause[T float64 | int](min, max *T) bson.M {
	if min == nil && max == nil {
		return nil
	}
	rng := bson.M{}
	if min != nil {
		rng["$gte"] = *min
	}
	if max != nil {
		rng["$lte"] = *max
	}
	return rng
}

// specificationsClause matches documents where any value in the open-ended
// specifications map, stringified, contains the given text.
func specificationsClause(text string) bson.M {
	return bson.M{"$expr": bson.M{
		"$anyElementTrue": bson.A{bson.M{
			"$map": bson.M{
				"input": bson.M{"$objectToArray": bson.M{"$ifNull": bson.A{"$specifications", bson.M{}}}},
				"as":    "spec",
				"in": bson.M{"$regexMatch": bson.M{
					"input":   bson.M{"$toString": "$$spec.v"},
					"regex":   regexp.QuoteMeta(text),
					"options": "i",
				}},
			},
		}},
	}}
}

// buildCategoryPredicate translates a category search query into a match
// predicate over the single categories collection.
func buildCategoryPredicate(q domain.CategorySearchQuery) bson.M {
	var and []bson.M

	if q.Query != "" {
		r := containsRegex(q.Query)
		and = append(and, bson.M{"$or": []bson.M{
			{"name": r},
			{"description": r},
		}})
	}
	if q.Name != "" {
		and = append(and, bson.M{"name": containsRegex(q.Name)})
	}
	if q.Description != "" {
		and = append(and, bson.M{"description": containsRegex(q.Description)})
	}
	if q.IsActive != nil {
		and = append(and, bson.M{"isActive": *q.IsActive})
	}

	if len(and) == 0 {
		return bson.M{}
	}
	return bson.M{"$and": and}
}

func sortDirection(order string) int {
	if order == domain.OrderAsc {
		return 1
	}
	return -1
}

// resolveProductSort maps (sortKey, order, hasTextQuery) to a deterministic
// ordering. Field sorts honor the requested order; relevance uses a fixed
// tie-break chain (match strength, featured, recency) and ignores the
// requested order entirely. A trailing _id key keeps pagination stable.
func resolveProductSort(sortBy, order string, hasTextQuery bool) bson.D {
	dir := sortDirection(order)

	switch sortBy {
	case domain.SortPrice:
		return bson.D{{Key: "price", Value: dir}, {Key: "_id", Value: 1}}
	case domain.SortName:
		return bson.D{{Key: "name", Value: dir}, {Key: "_id", Value: 1}}
	case domain.SortQuantity:
		return bson.D{{Key: "quantity", Value: dir}, {Key: "_id", Value: 1}}
	case domain.SortRelevance:
		if hasTextQuery {
			return bson.D{
				{Key: relevanceScoreField, Value: -1},
				{Key: "isFeatured", Value: -1},
				{Key: "createdAt", Value: -1},
				{Key: "_id", Value: 1},
			}
		}
		return bson.D{
			{Key: "isFeatured", Value: -1},
			{Key: "createdAt", Value: -1},
			{Key: "_id", Value: 1},
		}
	default:
		return bson.D{{Key: "createdAt", Value: dir}, {Key: "_id", Value: 1}}
	}
}

// resolveCategorySort maps the category sort key to an ordering. Categories
// have no featured flag or relevance score; relevance falls back to recency.
func resolveCategorySort(sortBy, order string) bson.D {
	dir := sortDirection(order)

	switch sortBy {
	case domain.SortName:
		return bson.D{{Key: "name", Value: dir}, {Key: "_id", Value: 1}}
	case domain.SortRelevance:
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "createdAt", Value: dir}, {Key: "_id", Value: 1}}
	}
}

// relevanceStage computes a weighted match-strength score used by the
// relevance sort: name matches rank above sku, brand, and description.
func relevanceStage(text string) bson.D {
	pattern := regexp.QuoteMeta(text)

	fieldMatch := func(field string, weight int) bson.M {
		return bson.M{"$cond": bson.A{
			bson.M{"$regexMatch": bson.M{
				"input":   bson.M{"$ifNull": bson.A{"$" + field, ""}},
				"regex":   pattern,
				"options": "i",
			}},
			weight,
			0,
		}}
	}

	return bson.D{{Key: "$addFields", Value: bson.M{
		relevanceScoreField: bson.M{"$add": bson.A{
			fieldMatch("name", 4),
			fieldMatch("sku", 3),
			fieldMatch("brand", 2),
			fieldMatch("description", 1),
		}},
	}}}
}

// productSearchStages assembles the stage prefix shared by the count and
// data pipelines: match, category join, low-stock derivation, optional
// relevance scoring, sort. Both pipelines extend the same prefix so the
// reported total can never drift structurally from the returned page.
func productSearchStages(q domain.ProductSearchQuery) mongo.Pipeline {
	stages := mongo.Pipeline{
		bson.D{{Key: "$match", Value: buildProductPredicate(q)}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         categoriesCollection,
			"localField":   "categoryId",
			"foreignField": "_id",
			"as":           "category",
		}}},
		// A dangling categoryId leaves category unset rather than failing.
		bson.D{{Key: "$addFields", Value: bson.M{
			"category": bson.M{"$arrayElemAt": bson.A{"$category", 0}},
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"isLowStock": bson.M{"$lte": bson.A{"$quantity", "$lowStockThreshold"}},
		}}},
	}

	if q.SortBy == domain.SortRelevance && q.HasTextQuery() {
		stages = append(stages, relevanceStage(q.Query))
	}

	stages = append(stages, bson.D{{Key: "$sort", Value: resolveProductSort(q.SortBy, q.SortOrder, q.HasTextQuery())}})
	return stages
}

// productCountPipeline reduces the shared stages to a scalar total.
func productCountPipeline(q domain.ProductSearchQuery) mongo.Pipeline {
	return append(productSearchStages(q), bson.D{{Key: "$count", Value: "total"}})
}

// productDataPipeline extends the shared stages with the requested page.
func productDataPipeline(q domain.ProductSearchQuery, p pagination.Params) mongo.Pipeline {
	return append(productSearchStages(q),
		bson.D{{Key: "$skip", Value: int64(p.Skip)}},
		bson.D{{Key: "$limit", Value: int64(p.Limit)}},
	)
}
