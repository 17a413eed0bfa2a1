package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/artem13815/colorfit/pkg/auth"
)

// newTestRepo connects to MONGO_TEST_URI and uses a throwaway database.
func newTestRepo(t *testing.T) *PendingRepository {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx := context.Background()
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil))

	db := client.Database(fmt.Sprint("colorfit_test_", time.Now().UnixNano()))
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	repo, err := NewPendingRepository(ctx, db, "", 5*time.Minute)
	require.NoError(t, err)
	return repo
}

func TestPendingRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	now := time.Now().UTC().Truncate(time.Millisecond)

	_, err := repo.Get(ctx, "a@b.co")
	assert.ErrorIs(t, err, auth.ErrNotFound)

	first := auth.PendingVerification{Email: "a@b.co", Code: "111111", ExpiresAt: now.Add(5 * time.Minute), CreatedAt: now}
	second := auth.PendingVerification{Email: "a@b.co", Code: "222222", ExpiresAt: now.Add(6 * time.Minute), CreatedAt: now}
	require.NoError(t, repo.Upsert(ctx, first))
	require.NoError(t, repo.Upsert(ctx, second))

	n, err := repo.coll.CountDocuments(ctx, bson.M{"email": "a@b.co"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.Get(ctx, "a@b.co")
	require.NoError(t, err)
	assert.Equal(t, second, got)

	ok, err := repo.Consume(ctx, "a@b.co", "111111")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Consume(ctx, "a@b.co", "222222")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Consume(ctx, "a@b.co", "222222")
	require.NoError(t, err)
	assert.False(t, ok)
}
