package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/mongodb"
)

// TestConfigRepository_UpsertByType verifies one config per alert type
func TestConfigRepository_UpsertByType(t *testing.T) {
	t.Skip("Requires MongoDB connection - run with integration test suite")

	client := setupTestMongoDB(t)
	defer teardownTestMongoDB(t, client)

	repo := NewConfigRepository(client)
	ctx := context.Background()

	first, err := repo.UpsertByType(ctx, domain.AlertTypeFollowUp, 3, true, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 3, first.DaysThreshold)

	// Second upsert for the same type must update in place, not insert
	second, err := repo.UpsertByType(ctx, domain.AlertTypeFollowUp, 5, true, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "Upsert should reuse the existing document")
	assert.Equal(t, 5, second.DaysThreshold)

	configs, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, configs, 1)
}

// TestReminderRepository_Lifecycle walks a reminder through snooze and completion
func TestReminderRepository_Lifecycle(t *testing.T) {
	t.Skip("Requires MongoDB connection - run with integration test suite")

	client := setupTestMongoDB(t)
	defer teardownTestMongoDB(t, client)

	repo := NewReminderRepository(client)
	ctx := context.Background()

	reminder := &domain.Reminder{
		OwnerID:      "user-1",
		Title:        "Call Acme about renewal",
		Status:       domain.ReminderStatusActive,
		ReminderTime: time.Now().Add(-time.Minute),
		Methods:      []domain.NotificationMethod{domain.MethodInApp, domain.MethodEmail},
	}
	err := repo.Create(ctx, reminder)
	require.NoError(t, err)
	require.False(t, reminder.ID.IsZero())

	// Past-due active reminder shows up in the sweep
	candidates, err := repo.FindSweepCandidates(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	// Snoozed into the future it disappears from the sweep
	until := time.Now().Add(time.Hour)
	err = repo.SetStatus(ctx, reminder.ID.Hex(), domain.ReminderStatusSnoozed, &until)
	require.NoError(t, err)

	candidates, err = repo.FindSweepCandidates(ctx, time.Now())
	require.NoError(t, err)
	assert.Empty(t, candidates)

	// After the snooze expires it reappears
	candidates, err = repo.FindSweepCandidates(ctx, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Len(t, candidates, 1)

	// Completion takes it out for good
	err = repo.SetStatus(ctx, reminder.ID.Hex(), domain.ReminderStatusCompleted, nil)
	require.NoError(t, err)

	candidates, err = repo.FindSweepCandidates(ctx, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

// TestReminderRepository_ArchiveHidesEverywhere verifies soft delete
func TestReminderRepository_ArchiveHidesEverywhere(t *testing.T) {
	t.Skip("Requires MongoDB connection - run with integration test suite")

	client := setupTestMongoDB(t)
	defer teardownTestMongoDB(t, client)

	repo := NewReminderRepository(client)
	ctx := context.Background()

	reminder := &domain.Reminder{
		OwnerID:      "user-1",
		Title:        "Archived reminder",
		Status:       domain.ReminderStatusActive,
		ReminderTime: time.Now().Add(-time.Minute),
		Methods:      []domain.NotificationMethod{domain.MethodInApp},
	}
	require.NoError(t, repo.Create(ctx, reminder))

	require.NoError(t, repo.Archive(ctx, reminder.ID.Hex()))

	_, err := repo.FindByID(ctx, reminder.ID.Hex())
	assert.Error(t, err, "Archived reminder should not be found")

	list, total, err := repo.FindByOwner(ctx, "user-1", "", 1, 20)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, int64(0), total)

	candidates, err := repo.FindSweepCandidates(ctx, time.Now())
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

// TestReminderRepository_ReactivationClearsSnooze verifies that moving a
// reminder back to Active drops the stored snooze expiry
func TestReminderRepository_ReactivationClearsSnooze(t *testing.T) {
	t.Skip("Requires MongoDB connection - run with integration test suite")

	client := setupTestMongoDB(t)
	defer teardownTestMongoDB(t, client)

	repo := NewReminderRepository(client)
	ctx := context.Background()

	reminder := &domain.Reminder{
		OwnerID:      "user-1",
		Title:        "Snoozed then reactivated",
		Status:       domain.ReminderStatusActive,
		ReminderTime: time.Now().Add(-time.Hour),
		Methods:      []domain.NotificationMethod{domain.MethodInApp},
	}
	require.NoError(t, repo.Create(ctx, reminder))

	until := time.Now().Add(-time.Minute)
	require.NoError(t, repo.SetStatus(ctx, reminder.ID.Hex(), domain.ReminderStatusSnoozed, &until))

	// The sweep flips an expired snooze back to Active with no snooze stamp
	require.NoError(t, repo.SetStatus(ctx, reminder.ID.Hex(), domain.ReminderStatusActive, nil))

	found, err := repo.FindByID(ctx, reminder.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, domain.ReminderStatusActive, found.Status)
	assert.Nil(t, found.SnoozeUntil, "Reactivation must remove the stale snooze expiry")
}

// TestReminderRepository_OwnerScoping verifies listing never leaks other users' reminders
func TestReminderRepository_OwnerScoping(t *testing.T) {
	t.Skip("Requires MongoDB connection - run with integration test suite")

	client := setupTestMongoDB(t)
	defer teardownTestMongoDB(t, client)

	repo := NewReminderRepository(client)
	ctx := context.Background()

	for _, owner := range []string{"user-1", "user-1", "user-2"} {
		require.NoError(t, repo.Create(ctx, &domain.Reminder{
			OwnerID:      owner,
			Title:        "Reminder for " + owner,
			Status:       domain.ReminderStatusActive,
			ReminderTime: time.Now().Add(time.Hour),
			Methods:      []domain.NotificationMethod{domain.MethodInApp},
		}))
	}

	list, total, err := repo.FindByOwner(ctx, "user-1", "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, rem := range list {
		assert.Equal(t, "user-1", rem.OwnerID)
	}
}

// TestSuppressionRepository_UpsertAndExpiry verifies snooze expiry cleanup
func TestSuppressionRepository_UpsertAndExpiry(t *testing.T) {
	t.Skip("Requires MongoDB connection - run with integration test suite")

	client := setupTestMongoDB(t)
	defer teardownTestMongoDB(t, client)

	repo := NewSuppressionRepository(client)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	require.NoError(t, repo.Upsert(ctx, &domain.AlertSuppression{
		AlertID:         domain.FollowUpAlertID("lead-1"),
		Reason:          domain.SuppressionSnoozed,
		SuppressedUntil: &past,
		ActorID:         "user-1",
	}))

	require.NoError(t, repo.Upsert(ctx, &domain.AlertSuppression{
		AlertID:      domain.FollowUpAlertID("lead-2"),
		Reason:       domain.SuppressionDismissed,
		LastActivity: time.Now().Add(-48 * time.Hour),
		ActorID:      "user-1",
	}))

	deleted, err := repo.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted, "Only the expired snooze should be removed")

	remaining, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, domain.SuppressionDismissed, remaining[0].Reason)
}

// TestDispatchRepository_FeedAndRead verifies the in-app feed behavior
func TestDispatchRepository_FeedAndRead(t *testing.T) {
	t.Skip("Requires MongoDB connection - run with integration test suite")

	client := setupTestMongoDB(t)
	defer teardownTestMongoDB(t, client)

	repo := NewDispatchRepository(client)
	ctx := context.Background()

	record := &domain.DispatchRecord{
		OwnerID:    "user-1",
		ReminderID: "reminder-1",
		Channel:    domain.MethodInApp,
		Status:     domain.DispatchStatusSent,
		Body:       "Call Acme about renewal",
	}
	require.NoError(t, repo.Create(ctx, record))

	// Another user cannot mark it read
	require.NoError(t, repo.MarkRead(ctx, record.ID.Hex(), "user-2"))
	found, err := repo.FindByID(ctx, record.ID.Hex())
	require.NoError(t, err)
	assert.Nil(t, found.ReadAt, "Cross-user read receipt must not apply")

	// The owner can
	require.NoError(t, repo.MarkRead(ctx, record.ID.Hex(), "user-1"))
	found, err = repo.FindByID(ctx, record.ID.Hex())
	require.NoError(t, err)
	assert.NotNil(t, found.ReadAt)

	// Soft delete hides it from the feed
	require.NoError(t, repo.SoftDelete(ctx, record.ID.Hex(), "user-1"))
	list, total, err := repo.FindByOwner(ctx, "user-1", domain.MethodInApp, "", 1, 20)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, int64(0), total)
}

// TestPreferencesRepository_DefaultsWhenMissing verifies the fallback document
func TestPreferencesRepository_DefaultsWhenMissing(t *testing.T) {
	t.Skip("Requires MongoDB connection - run with integration test suite")

	client := setupTestMongoDB(t)
	defer teardownTestMongoDB(t, client)

	repo := NewPreferencesRepository(client)
	ctx := context.Background()

	prefs, err := repo.GetByUserID(ctx, "user-with-no-prefs")
	require.NoError(t, err)
	assert.True(t, prefs.InAppEnabled)
	assert.True(t, prefs.EmailEnabled)
	assert.True(t, prefs.WhatsAppEnabled)
	assert.Equal(t, "UTC", prefs.Timezone)
}

// ============= Test Helpers =============

// setupTestMongoDB initializes a test MongoDB connection
func setupTestMongoDB(t *testing.T) *mongodb.MongoClient {
	client, err := mongodb.NewMongoClient("mongodb://localhost:27017", "crm_automation_test")
	require.NoError(t, err, "Failed to connect to test MongoDB")

	return client
}

// teardownTestMongoDB cleans up test collections
func teardownTestMongoDB(t *testing.T, client *mongodb.MongoClient) {
	ctx := context.Background()

	collections := []string{
		"automation_configs",
		"reminders",
		"alert_suppressions",
		"dispatch_log",
		"message_templates",
		"failed_dispatches",
		"notification_preferences",
		"email_bounces",
		"outbox_events",
	}

	for _, coll := range collections {
		if err := client.Collection(coll).Drop(ctx); err != nil {
			t.Logf("Warning: Failed to drop collection %s: %v", coll, err)
		}
	}

	client.Disconnect(ctx)
}
