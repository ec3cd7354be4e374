package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestTemplateCache tests the template caching functionality
func TestTemplateCache(t *testing.T) {
	cache := NewTemplateCache(1 * time.Second)

	template := &domain.MessageTemplate{
		ID:      primitive.NewObjectID(),
		Name:    "reminder-due",
		Subject: "Reminder: {{title}}",
		Body:    "Your reminder {{title}} is due.",
	}

	key := "name:reminder-due"
	if err := cache.Set(key, template); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	retrieved, found := cache.Get(key)
	if !found {
		t.Error("Expected to find cached template")
	}
	if retrieved.Name != template.Name {
		t.Errorf("Expected template name %s, got %s", template.Name, retrieved.Name)
	}

	// Entry expires after the TTL
	time.Sleep(1100 * time.Millisecond)
	_, found = cache.Get(key)
	if found {
		t.Error("Expected cache entry to be expired")
	}
}

// TestTemplateCacheInvalidate tests cache invalidation
func TestTemplateCacheInvalidate(t *testing.T) {
	cache := NewTemplateCache(5 * time.Minute)

	template := &domain.MessageTemplate{
		ID:      primitive.NewObjectID(),
		Name:    "followup-alert",
		Subject: "Follow up with {{company}}",
		Body:    "No activity for {{days}} days.",
	}

	key := "name:followup-alert"
	_ = cache.Set(key, template)

	_, found := cache.Get(key)
	if !found {
		t.Error("Expected to find cached template")
	}

	cache.Invalidate(key)

	_, found = cache.Get(key)
	if found {
		t.Error("Expected cache entry to be invalidated")
	}
}

// TestTemplateCacheLimits tests the cache's key and size validation
func TestTemplateCacheLimits(t *testing.T) {
	cache := NewTemplateCache(5 * time.Minute)

	tests := []struct {
		name     string
		key      string
		template *domain.MessageTemplate
		wantErr  bool
	}{
		{
			name: "valid entry",
			key:  "name:valid",
			template: &domain.MessageTemplate{
				Subject: "Test",
				Body:    "Test",
			},
			wantErr: false,
		},
		{
			name:     "empty key",
			key:      "",
			template: &domain.MessageTemplate{},
			wantErr:  true,
		},
		{
			name: "oversized template",
			key:  "name:huge",
			template: &domain.MessageTemplate{
				Subject: "Test",
				Body:    strings.Repeat("x", maxTemplateSize+1),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cache.Set(tt.key, tt.template)
			if (err != nil) != tt.wantErr {
				t.Errorf("Set() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestTemplateCacheEviction verifies the oldest entry is evicted when full
func TestTemplateCacheEviction(t *testing.T) {
	cache := NewTemplateCache(5 * time.Minute)

	// Fill the cache, spacing entry times so "oldest" is well defined
	for i := 0; i < maxCacheSize; i++ {
		key := "name:t" + string(rune('a'+i%26)) + time.Now().Add(time.Duration(i)).String()
		cache.mu.Lock()
		cache.templates[key] = &domain.MessageTemplate{Name: key}
		cache.entries[key] = time.Now().Add(time.Duration(-maxCacheSize+i) * time.Second)
		cache.mu.Unlock()
	}

	if err := cache.Set("name:newest", &domain.MessageTemplate{Name: "newest"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	cache.mu.RLock()
	size := len(cache.templates)
	cache.mu.RUnlock()

	if size > maxCacheSize {
		t.Errorf("Expected cache size <= %d after eviction, got %d", maxCacheSize, size)
	}

	if _, found := cache.Get("name:newest"); !found {
		t.Error("Expected newest entry to survive eviction")
	}
}
