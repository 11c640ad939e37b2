package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GeekyBear/inventory-api/internal/domain"
	pkgkafka "github.com/GeekyBear/inventory-api/pkg/kafka"
)

// Kafka topics for inventory domain events.
const (
	TopicProductCreated  = "inventory.product.created"
	TopicProductUpdated  = "inventory.product.updated"
	TopicProductDeleted  = "inventory.product.deleted"
	TopicProductLowStock = "inventory.product.low_stock"

	TopicCategoryCreated = "inventory.category.created"
	TopicCategoryUpdated = "inventory.category.updated"
	TopicCategoryDeleted = "inventory.category.deleted"
)

// Aggregate type constants.
const (
	AggregateTypeProduct  = "product"
	AggregateTypeCategory = "category"
)

// Source identifier for events originating from this service.
const SourceInventoryAPI = "inventory-api"

// ProductEventData is the payload for product lifecycle events.
type ProductEventData struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	SKU        string  `json:"sku"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	CategoryID string  `json:"category_id"`
	IsActive   bool    `json:"is_active"`
}

// ProductDeletedData is the payload for a product.deleted event. Soft and
// hard deletes share the topic; Hard distinguishes them.
type ProductDeletedData struct {
	ID   string `json:"id"`
	SKU  string `json:"sku"`
	Hard bool   `json:"hard"`
}

// LowStockData is the payload for a product.low_stock event, emitted when a
// stock change crosses the product's threshold downward.
type LowStockData struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	Threshold int    `json:"threshold"`
}

// CategoryEventData is the payload for category lifecycle events.
type CategoryEventData struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	IsActive bool   `json:"is_active"`
}

// CategoryDeletedData is the payload for a category.deleted event.
type CategoryDeletedData struct {
	ID   string `json:"id"`
	Hard bool   `json:"hard"`
}

// Producer publishes inventory domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates an event producer for the inventory service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func productEventData(p *domain.Product) ProductEventData {
	return ProductEventData{
		ID:         p.ID.Hex(),
		Name:       p.Name,
		SKU:        p.SKU,
		Price:      p.Price,
		Quantity:   p.Quantity,
		CategoryID: p.CategoryID.Hex(),
		IsActive:   p.IsActive,
	}
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publishProduct(ctx, TopicProductCreated, product)
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publishProduct(ctx, TopicProductUpdated, product)
}

func (p *Producer) publishProduct(ctx context.Context, topic string, product *domain.Product) error {
	event, err := pkgkafka.NewEvent(topic, product.ID.Hex(), AggregateTypeProduct, SourceInventoryAPI, productEventData(product))
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published product event",
		slog.String("topic", topic),
		slog.String("product_id", product.ID.Hex()),
		slog.String("sku", product.SKU),
	)

	return nil
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, product *domain.Product, hard bool) error {
	data := ProductDeletedData{
		ID:   product.ID.Hex(),
		SKU:  product.SKU,
		Hard: hard,
	}

	event, err := pkgkafka.NewEvent(TopicProductDeleted, product.ID.Hex(), AggregateTypeProduct, SourceInventoryAPI, data)
	if err != nil {
		return fmt.Errorf("create product.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicProductDeleted, event); err != nil {
		return fmt.Errorf("publish product.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published product.deleted event",
		slog.String("product_id", product.ID.Hex()),
		slog.Bool("hard", hard),
	)

	return nil
}

// PublishLowStock publishes a product.low_stock event.
func (p *Producer) PublishLowStock(ctx context.Context, product *domain.Product) error {
	data := LowStockData{
		ID:        product.ID.Hex(),
		Name:      product.Name,
		SKU:       product.SKU,
		Quantity:  product.Quantity,
		Threshold: product.LowStockThreshold,
	}

	event, err := pkgkafka.NewEvent(TopicProductLowStock, product.ID.Hex(), AggregateTypeProduct, SourceInventoryAPI, data)
	if err != nil {
		return fmt.Errorf("create product.low_stock event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicProductLowStock, event); err != nil {
		return fmt.Errorf("publish product.low_stock event: %w", err)
	}

	p.logger.InfoContext(ctx, "published product.low_stock event",
		slog.String("product_id", product.ID.Hex()),
		slog.String("sku", product.SKU),
		slog.Int("quantity", product.Quantity),
		slog.Int("threshold", product.LowStockThreshold),
	)

	return nil
}

// PublishCategoryCreated publishes a category.created event.
func (p *Producer) PublishCategoryCreated(ctx context.Context, category *domain.Category) error {
	return p.publishCategory(ctx, TopicCategoryCreated, category)
}

// PublishCategoryUpdated publishes a category.updated event.
func (p *Producer) PublishCategoryUpdated(ctx context.Context, category *domain.Category) error {
	return p.publishCategory(ctx, TopicCategoryUpdated, category)
}

func (p *Producer) publishCategory(ctx context.Context, topic string, category *domain.Category) error {
	data := CategoryEventData{
		ID:       category.ID.Hex(),
		Name:     category.Name,
		Slug:     category.Slug,
		IsActive: category.IsActive,
	}

	event, err := pkgkafka.NewEvent(topic, category.ID.Hex(), AggregateTypeCategory, SourceInventoryAPI, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published category event",
		slog.String("topic", topic),
		slog.String("category_id", category.ID.Hex()),
		slog.String("slug", category.Slug),
	)

	return nil
}

// PublishCategoryDeleted publishes a category.deleted event.
func (p *Producer) PublishCategoryDeleted(ctx context.Context, id string, hard bool) error {
	data := CategoryDeletedData{ID: id, Hard: hard}

	event, err := pkgkafka.NewEvent(TopicCategoryDeleted, id, AggregateTypeCategory, SourceInventoryAPI, data)
	if err != nil {
		return fmt.Errorf("create category.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCategoryDeleted, event); err != nil {
		return fmt.Errorf("publish category.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published category.deleted event",
		slog.String("category_id", id),
		slog.Bool("hard", hard),
	)

	return nil
}
