package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/GeekyBear/inventory-api/internal/domain"
	"github.com/GeekyBear/inventory-api/pkg/pagination"
)

func boolPtr(b bool) *bool          { return &b }
func floatPtr(f float64) *float64   { return &f }
func intPtr(i int) *int             { return &i }

func andClauses(t *testing.T, predicate bson.M) []bson.M {
	t.Helper()
	clauses, ok := predicate["$and"].([]bson.M)
	require.True(t, ok, "predicate should be an $and group, got %v", predicate)
	return clauses
}

func TestBuildProductPredicate_Empty(t *testing.T) {
	predicate := buildProductPredicate(domain.ProductSearchQuery{})
	assert.Equal(t, bson.M{}, predicate)
}

func TestBuildProductPredicate_GeneralTextGroup(t *testing.T) {
	predicate := buildProductPredicate(domain.ProductSearchQuery{Query: "laptop"})
	clauses := andClauses(t, predicate)
	require.Len(t, clauses, 1)

	or, ok := clauses[0]["$or"].([]bson.M)
	require.True(t, ok)
	require.Len(t, or, 5)

	fields := make([]string, 0, len(or))
	for _, clause := range or {
		for field, value := range clause {
			fields = append(fields, field)
			r, ok := value.(primitive.Regex)
			require.True(t, ok)
			assert.Equal(t, "laptop", r.Pattern)
			assert.Equal(t, "i", r.Options)
		}
	}
	assert.ElementsMatch(t, []string{"name", "description", "brand", "sku", "tags"}, fields)
}

func TestBuildProductPredicate_SpecificationsJoinsTextGroup(t *testing.T) {
	predicate := buildProductPredicate(domain.ProductSearchQuery{
		Query:          "laptop",
		Specifications: "16GB",
	})
	clauses := andClauses(t, predicate)
	require.Len(t, clauses, 1, "specifications text must widen the OR group, not AND with it")

	or := clauses[0]["$or"].([]bson.M)
	require.Len(t, or, 6)
	_, hasExpr := or[5]["$expr"]
	assert.True(t, hasExpr, "last OR member should be the specifications $expr clause")
}

func TestBuildProductPredicate_SpecificationsAlone(t *testing.T) {
	predicate := buildProductPredicate(domain.ProductSearchQuery{Specifications: "16GB"})
	clauses := andClauses(t, predicate)
	require.Len(t, clauses, 1)

	or := clauses[0]["$or"].([]bson.M)
	require.Len(t, or, 1)
	_, hasExpr := or[0]["$expr"]
	assert.True(t, hasExpr)
}

func TestBuildProductPredicate_RegexMetacharactersQuoted(t *testing.T) {
	predicate := buildProductPredicate(domain.ProductSearchQuery{Name: "C++ (v2)"})
	clauses := andClauses(t, predicate)
	r := clauses[0]["name"].(primitive.Regex)
	assert.Equal(t, `C\+\+ \(v2\)`, r.Pattern)
}

func TestBuildProductPredicate_SKUFoldedUppercase(t *testing.T) {
	predicate := buildProductPredicate(domain.ProductSearchQuery{SKU: "abc-123"})
	clauses := andClauses(t, predicate)
	r := clauses[0]["sku"].(primitive.Regex)
	assert.Equal(t, "ABC-123", r.Pattern)
}

func TestBuildProductPredicate_Ranges(t *testing.T) {
	predicate := buildProductPredicate(domain.ProductSearchQuery{
		MinPrice:    floatPtr(10),
		MaxPrice:    floatPtr(99.99),
		MinQuantity: intPtr(5),
	})
	clauses := andClauses(t, predicate)
	require.Len(t, clauses, 2)

	assert.Equal(t, bson.M{"price": bson.M{"$gte": 10.0, "$lte": 99.99}}, clauses[0])
	assert.Equal(t, bson.M{"quantity": bson.M{"$gte": 5}}, clauses[1])
}

func TestBuildProductPredicate_ContradictoryRangeStillBuilds(t *testing.T) {
	// min > max matches nothing; it is not rejected as invalid input.
	predicate := buildProductPredicate(domain.ProductSearchQuery{
		MinPrice: floatPtr(100),
		MaxPrice: floatPtr(10),
	})
	clauses := andClauses(t, predicate)
	assert.Equal(t, bson.M{"price": bson.M{"$gte": 100.0, "$lte": 10.0}}, clauses[0])
}

func TestBuildProductPredicate_TagsAnyMatch(t *testing.T) {
	predicate := buildProductPredicate(domain.ProductSearchQuery{Tags: []string{"gaming", "rgb"}})
	clauses := andClauses(t, predicate)
	require.Len(t, clauses, 1)

	or, ok := clauses[0]["$or"].([]bson.M)
	require.True(t, ok)
	require.Len(t, or, 2)
	assert.Equal(t, "gaming", or[0]["tags"].(primitive.Regex).Pattern)
	assert.Equal(t, "rgb", or[1]["tags"].(primitive.Regex).Pattern)
}

func TestBuildProductPredicate_LowStockExpr(t *testing.T) {
	predicate := buildProductPredicate(domain.ProductSearchQuery{IsLowStock: boolPtr(true)})
	clauses := andClauses(t, predicate)
	assert.Equal(t, bson.M{
		"$expr": bson.M{"$lte": bson.A{"$quantity", "$lowStockThreshold"}},
	}, clauses[0])

	predicate = buildProductPredicate(domain.ProductSearchQuery{IsLowStock: boolPtr(false)})
	clauses = andClauses(t, predicate)
	assert.Equal(t, bson.M{
		"$expr": bson.M{"$gt": bson.A{"$quantity", "$lowStockThreshold"}},
	}, clauses[0])
}

func TestBuildProductPredicate_FlagsAndCategory(t *testing.T) {
	categoryID := primitive.NewObjectID()
	predicate := buildProductPredicate(domain.ProductSearchQuery{
		CategoryID: &categoryID,
		IsActive:   boolPtr(true),
		IsFeatured: boolPtr(false),
	})
	clauses := andClauses(t, predicate)
	require.Len(t, clauses, 3)
	assert.Equal(t, bson.M{"categoryId": categoryID}, clauses[0])
	assert.Equal(t, bson.M{"isActive": true}, clauses[1])
	assert.Equal(t, bson.M{"isFeatured": false}, clauses[2])
}

func TestBuildCategoryPredicate(t *testing.T) {
	predicate := buildCategoryPredicate(domain.CategorySearchQuery{
		Query:    "electro",
		IsActive: boolPtr(true),
	})
	clauses := andClauses(t, predicate)
	require.Len(t, clauses, 2)

	or, ok := clauses[0]["$or"].([]bson.M)
	require.True(t, ok)
	assert.Len(t, or, 2)
	assert.Equal(t, bson.M{"isActive": true}, clauses[1])

	assert.Equal(t, bson.M{}, buildCategoryPredicate(domain.CategorySearchQuery{}))
}

func TestResolveProductSort_FieldSortsHonorOrder(t *testing.T) {
	sort := resolveProductSort(domain.SortPrice, domain.OrderAsc, false)
	assert.Equal(t, bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}, sort)

	sort = resolveProductSort(domain.SortName, domain.OrderDesc, true)
	assert.Equal(t, bson.D{{Key: "name", Value: -1}, {Key: "_id", Value: 1}}, sort)

	sort = resolveProductSort(domain.SortQuantity, "", false)
	assert.Equal(t, bson.D{{Key: "quantity", Value: -1}, {Key: "_id", Value: 1}}, sort)
}

func TestResolveProductSort_RelevanceWithText(t *testing.T) {
	// The requested order is ignored: relevance always ranks best match first.
	sort := resolveProductSort(domain.SortRelevance, domain.OrderAsc, true)
	assert.Equal(t, bson.D{
		{Key: "relevanceScore", Value: -1},
		{Key: "isFeatured", Value: -1},
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: 1},
	}, sort)
}

func TestResolveProductSort_RelevanceWithoutText(t *testing.T) {
	// Without query text there is no score to rank by; featured then newest.
	sort := resolveProductSort(domain.SortRelevance, domain.OrderDesc, false)
	assert.Equal(t, bson.D{
		{Key: "isFeatured", Value: -1},
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: 1},
	}, sort)
}

func TestResolveProductSort_DefaultsToCreatedAt(t *testing.T) {
	sort := resolveProductSort("", "", false)
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}, sort)

	sort = resolveProductSort("unknown", domain.OrderAsc, false)
	assert.Equal(t, bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}, sort)
}

func TestResolveCategorySort(t *testing.T) {
	sort := resolveCategorySort(domain.SortName, domain.OrderAsc)
	assert.Equal(t, bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}, sort)

	sort = resolveCategorySort(domain.SortRelevance, domain.OrderAsc)
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}, sort)

	sort = resolveCategorySort("", "")
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}, sort)
}

func stageNames(p []bson.D) []string {
	names := make([]string, 0, len(p))
	for _, stage := range p {
		names = append(names, stage[0].Key)
	}
	return names
}

func TestProductPipelines_ShareBaseStages(t *testing.T) {
	q := domain.ProductSearchQuery{Query: "laptop", SortBy: domain.SortRelevance}

	count := productCountPipeline(q)
	data := productDataPipeline(q, pagination.New(2, 20))

	assert.Equal(t, []string{"$match", "$lookup", "$addFields", "$addFields", "$addFields", "$sort", "$count"},
		stageNames(count))
	assert.Equal(t, []string{"$match", "$lookup", "$addFields", "$addFields", "$addFields", "$sort", "$skip", "$limit"},
		stageNames(data))

	// The shared prefix must be identical in both pipelines.
	require.Equal(t, len(count)-1, len(data)-2)
	for i := 0; i < len(count)-1; i++ {
		assert.Equal(t, count[i], data[i], "stage %d diverged between count and data pipelines", i)
	}

	assert.Equal(t, int64(20), data[len(data)-2][0].Value)
	assert.Equal(t, int64(20), data[len(data)-1][0].Value)
}

func TestProductPipelines_NoRelevanceStageWithoutText(t *testing.T) {
	q := domain.ProductSearchQuery{SortBy: domain.SortRelevance}
	data := productDataPipeline(q, pagination.New(1, 10))
	assert.Equal(t, []string{"$match", "$lookup", "$addFields", "$addFields", "$sort", "$skip", "$limit"},
		stageNames(data))
}

func TestProductPipelines_RelevanceStageOnlyForRelevanceSort(t *testing.T) {
	q := domain.ProductSearchQuery{Query: "laptop", SortBy: domain.SortPrice}
	data := productDataPipeline(q, pagination.New(1, 10))
	assert.Equal(t, []string{"$match", "$lookup", "$addFields", "$addFields", "$sort", "$skip", "$limit"},
		stageNames(data))
}

func TestRelevanceStage_Weights(t *testing.T) {
	stage := relevanceStage("laptop")
	require.Equal(t, "$addFields", stage[0].Key)

	fields := stage[0].Value.(bson.M)
	score := fields["relevanceScore"].(bson.M)
	terms := score["$add"].(bson.A)
	require.Len(t, terms, 4)

	weights := make([]int, 0, 4)
	for _, term := range terms {
		cond := term.(bson.M)["$cond"].(bson.A)
		weights = append(weights, cond[1].(int))
	}
	assert.Equal(t, []int{4, 3, 2, 1}, weights)
}
