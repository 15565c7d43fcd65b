package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/AdamBeresnev/shuttle-bracket/internal/bracket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestMongoStore connects to MONGO_TEST_URI and drops the database when the
// test ends. Tests are skipped when the variable is unset.
func newTestMongoStore(t *testing.T) *MongoStore {
	t.Helper()

	mongoURI := os.Getenv("MONGO_TEST_URI")
	if mongoURI == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := NewMongoStore(ctx, mongoURI, "test_shuttle_bracket_"+uuid.NewString()[:8])
	require.NoError(t, err, "Failed to connect to MongoDB")

	t.Cleanup(func() {
		_ = s.Database.Drop(context.Background())
		_ = s.Close(context.Background())
	})
	return s
}

func TestMongoStore(t *testing.T) {
	runRepositoryContract(t, func(t *testing.T) Repository {
		return newTestMongoStore(t)
	})
}

func TestMongoReplaceMatchesPartialFailure(t *testing.T) {
	s := newTestMongoStore(t)
	ctx := context.Background()

	tournament := createTournament(t, s)
	teams := createTeams(t, s, tournament.ID, 2)
	matches, err := bracket.Generate(tournament.ID, teams, bracket.KeepOrder)
	require.NoError(t, err)
	require.NoError(t, s.ReplaceMatches(ctx, tournament.ID, matches))

	// Two matches sharing an id make the insert fail after the delete.
	dup := append(matches, matches[0])
	err = s.ReplaceMatches(ctx, tournament.ID, dup)
	require.Error(t, err)
	assert.True(t, errors.Is(err, bracket.ErrPartialReplace))
}

func TestNewMongoStoreRequiresDatabase(t *testing.T) {
	_, err := NewMongoStore(context.Background(), "mongodb://localhost:27017", "")
	assert.Error(t, err)
}
