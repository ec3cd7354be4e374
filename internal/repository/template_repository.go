package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const templatesCollection = "message_templates"

const (
	maxCacheSize    = 500
	maxTemplateSize = 1024 * 1024 // 1MB subject+body cap
)

// TemplateCache holds recently loaded templates so the dispatcher does not
// hit Mongo on every send
type TemplateCache struct {
	templates map[string]*domain.MessageTemplate
	entries   map[string]time.Time
	mu        sync.RWMutex
	ttl       time.Duration
}

// NewTemplateCache creates a new template cache
func NewTemplateCache(ttl time.Duration) *TemplateCache {
	return &TemplateCache{
		templates: make(map[string]*domain.MessageTemplate),
		entries:   make(map[string]time.Time),
		ttl:       ttl,
	}
}

// Get retrieves a template from cache if present and not expired
func (c *TemplateCache) Get(key string) (*domain.MessageTemplate, bool) {
	c.mu.RLock()
	template, exists := c.templates[key]
	entryTime, hasEntry := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		return nil, false
	}

	if !hasEntry || time.Since(entryTime) > c.ttl {
		c.mu.Lock()
		delete(c.templates, key)
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}

	return template, true
}

// Set stores a template in cache, evicting the oldest entry when full
func (c *TemplateCache) Set(key string, template *domain.MessageTemplate) error {
	if key == "" {
		return errors.New("cache key cannot be empty")
	}
	if template != nil && len(template.Subject)+len(template.Body) > maxTemplateSize {
		return errors.New("template size exceeds maximum allowed size")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.templates) >= maxCacheSize && c.templates[key] == nil {
		c.evictOldest()
	}

	c.templates[key] = template
	c.entries[key] = time.Now()
	return nil
}

// evictOldest removes the oldest entry (must be called with lock held)
func (c *TemplateCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time
	first := true

	for key, entryTime := range c.entries {
		if first || entryTime.Before(oldestTime) {
			oldestKey = key
			oldestTime = entryTime
			first = false
		}
	}

	if oldestKey != "" {
		delete(c.templates, oldestKey)
		delete(c.entries, oldestKey)
	}
}

// Invalidate removes a template from cache
func (c *TemplateCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.templates, key)
	delete(c.entries, key)
}

// TemplateRepository handles message template data operations
type TemplateRepository struct {
	client *mongodb.MongoClient
	cache  *TemplateCache
}

// NewTemplateRepository creates a new template repository with caching
func NewTemplateRepository(client *mongodb.MongoClient) *TemplateRepository {
	return &TemplateRepository{
		client: client,
		cache:  NewTemplateCache(5 * time.Minute),
	}
}

// EnsureIndexes creates necessary indexes for optimal query performance
func (r *TemplateRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("name_idx").SetUnique(true),
		},
	}

	return r.client.CreateIndexes(ctx, templatesCollection, indexes)
}

// Create creates a new template
func (r *TemplateRepository) Create(ctx context.Context, template *domain.MessageTemplate) error {
	template.ID = primitive.NewObjectID()
	template.CreatedAt = time.Now()
	template.UpdatedAt = template.CreatedAt

	_, err := r.client.Collection(templatesCollection).InsertOne(ctx, template)
	return err
}

// FindByName finds a template by name with caching
func (r *TemplateRepository) FindByName(ctx context.Context, name string) (*domain.MessageTemplate, error) {
	cacheKey := "name:" + name
	if template, found := r.cache.Get(cacheKey); found {
		return template, nil
	}

	var template domain.MessageTemplate
	err := r.client.Collection(templatesCollection).FindOne(ctx, bson.M{"name": name}).Decode(&template)
	if err != nil {
		return nil, err
	}

	// Caching is best effort
	_ = r.cache.Set(cacheKey, &template)

	return &template, nil
}

// FindAll lists all templates, newest first
func (r *TemplateRepository) FindAll(ctx context.Context) ([]*domain.MessageTemplate, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.client.Collection(templatesCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []*domain.MessageTemplate
	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}

	return templates, nil
}

// Update updates a template and invalidates its cache entry
func (r *TemplateRepository) Update(ctx context.Context, template *domain.MessageTemplate) error {
	template.UpdatedAt = time.Now()

	filter := bson.M{"_id": template.ID}
	result, err := r.client.Collection(templatesCollection).UpdateOne(ctx, filter, bson.M{"$set": template})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	r.cache.Invalidate("name:" + template.Name)

	return nil
}

// Delete removes a template
func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	var template domain.MessageTemplate
	err = r.client.Collection(templatesCollection).FindOneAndDelete(ctx, bson.M{"_id": objectID}).Decode(&template)
	if err != nil {
		return err
	}

	r.cache.Invalidate("name:" + template.Name)

	return nil
}
