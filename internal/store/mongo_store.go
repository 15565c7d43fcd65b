package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/shuttle-bracket/internal/bracket"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps the same records as TournamentStore in MongoDB. Matches
// embed their team snapshots as sub-documents.
type MongoStore struct {
	Client      *mongo.Client
	Database    *mongo.Database
	Collections struct {
		Tournaments *mongo.Collection
		Teams       *mongo.Collection
		Matches     *mongo.Collection
	}
}

// NewMongoStore connects, pings and makes sure the indexes exist.
func NewMongoStore(ctx context.Context, mongoURI, dbName string) (*MongoStore, error) {
	if dbName == "" {
		return nil, fmt.Errorf("database name cannot be empty")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(dbName)
	s := &MongoStore{Client: client, Database: db}
	s.Collections.Tournaments = db.Collection("tournaments")
	s.Collections.Teams = db.Collection("teams")
	s.Collections.Matches = db.Collection("matches")

	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// EnsureIndexes backs the per-tournament uniqueness of team name, color and
// logo. Names compare case-insensitively.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	caseInsensitive := &options.Collation{Locale: "en", Strength: 2}

	_, err := s.Collections.Teams.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tournament_id", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetCollation(caseInsensitive),
		},
		{
			Keys:    bson.D{{Key: "tournament_id", Value: 1}, {Key: "color", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "tournament_id", Value: 1}, {Key: "logo", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create team indexes: %w", err)
	}

	_, err = s.Collections.Matches.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "tournament_id", Value: 1},
			{Key: "round_number", Value: 1},
			{Key: "index_in_round", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create match indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}

func (s *MongoStore) CreateTournament(ctx context.Context, tournament *bracket.Tournament) error {
	_, err := s.Collections.Tournaments.InsertOne(ctx, tournament)
	return err
}

func (s *MongoStore) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	err := s.Collections.Tournaments.FindOne(ctx, bson.M{"_id": id}).Decode(&tournament)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", bracket.ErrUnknownTournament, id)
	}
	if err != nil {
		return nil, err
	}
	return &tournament, nil
}

func (s *MongoStore) ListTournaments(ctx context.Context) ([]bracket.Tournament, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.Collections.Tournaments.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}

	var tournaments []bracket.Tournament
	if err := cursor.All(ctx, &tournaments); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (s *MongoStore) UpdateTournamentStatus(ctx context.Context, id uuid.UUID, status bracket.TournamentStatus) error {
	result, err := s.Collections.Tournaments.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", bracket.ErrUnknownTournament, id)
	}
	return nil
}

func (s *MongoStore) CreateTeam(ctx context.Context, team *bracket.Team) error {
	if _, err := s.GetTournament(ctx, team.TournamentID); err != nil {
		return err
	}

	_, err := s.Collections.Teams.InsertOne(ctx, team)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s", bracket.ErrDuplicateTeam, team.Name)
	}
	return err
}

func (s *MongoStore) ListTeams(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Team, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.Collections.Teams.Find(ctx, bson.M{"tournament_id": tournamentID}, opts)
	if err != nil {
		return nil, err
	}

	var teams []bracket.Team
	if err := cursor.All(ctx, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (s *MongoStore) GetTeam(ctx context.Context, id uuid.UUID) (*bracket.Team, error) {
	var team bracket.Team
	err := s.Collections.Teams.FindOne(ctx, bson.M{"_id": id}).Decode(&team)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", bracket.ErrUnknownTeam, id)
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *MongoStore) UpdateTeam(ctx context.Context, team *bracket.Team) error {
	update := bson.M{"$set": bson.M{"name": team.Name, "logo": team.Logo, "color": team.Color}}
	result, err := s.Collections.Teams.UpdateOne(ctx, bson.M{"_id": team.ID}, update)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s", bracket.ErrDuplicateTeam, team.Name)
	}
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", bracket.ErrUnknownTeam, team.ID)
	}
	return nil
}

func (s *MongoStore) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	result, err := s.Collections.Teams.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", bracket.ErrUnknownTeam, id)
	}
	return nil
}

func (s *MongoStore) ListMatches(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Match, error) {
	opts := options.Find().SetSort(bson.D{{Key: "round_number", Value: 1}, {Key: "index_in_round", Value: 1}})
	cursor, err := s.Collections.Matches.Find(ctx, bson.M{"tournament_id": tournamentID}, opts)
	if err != nil {
		return nil, err
	}

	var matches []bracket.Match
	if err := cursor.All(ctx, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

func (s *MongoStore) GetMatch(ctx context.Context, id string) (*bracket.Match, error) {
	var match bracket.Match
	err := s.Collections.Matches.FindOne(ctx, bson.M{"_id": id}).Decode(&match)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", bracket.ErrUnknownMatch, id)
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// ReplaceMatches deletes then inserts without a transaction. When the insert
// fails after the delete went through the error wraps
// bracket.ErrPartialReplace.
func (s *MongoStore) ReplaceMatches(ctx context.Context, tournamentID uuid.UUID, matches []bracket.Match) error {
	if err := checkTournamentIDs(tournamentID, matches); err != nil {
		return err
	}

	if err := s.DeleteMatches(ctx, tournamentID); err != nil {
		return fmt.Errorf("failed to delete matches: %w", err)
	}
	if len(matches) == 0 {
		return nil
	}

	docs := make([]interface{}, len(matches))
	for i := range matches {
		docs[i] = matches[i]
	}
	if _, err := s.Collections.Matches.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("%w: %w", bracket.ErrPartialReplace, err)
	}
	return nil
}

func (s *MongoStore) PatchMatch(ctx context.Context, id string, patch bracket.MatchPatch) error {
	return s.patchMatch(ctx, bson.M{"_id": id}, id, patch)
}

// ApplyChanges writes the changes one by one without a transaction. Changes
// after a failed one are not attempted; the bracket's reconcile pass restores
// slot writes that went missing this way.
func (s *MongoStore) ApplyChanges(ctx context.Context, tournamentID uuid.UUID, changes []bracket.Change) error {
	for i, c := range changes {
		filter := bson.M{"_id": c.MatchID, "tournament_id": tournamentID}
		if err := s.patchMatch(ctx, filter, c.MatchID, c.Patch); err != nil {
			if i == 0 {
				return err
			}
			return fmt.Errorf("applied %d of %d changes: %w", i, len(changes), err)
		}
	}
	return nil
}

func (s *MongoStore) patchMatch(ctx context.Context, filter bson.M, id string, patch bracket.MatchPatch) error {
	fields := patchFields(patch)
	if len(fields) == 0 {
		return nil
	}

	set := bson.M{}
	for _, f := range fields {
		set[f.name] = f.value
	}
	if patch.ExpectStatus != nil {
		filter["status"] = *patch.ExpectStatus
	}

	result, err := s.Collections.Matches.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount > 0 {
		return nil
	}

	current, err := s.GetMatch(ctx, id)
	if err != nil {
		return err
	}
	scope, scoped := filter["tournament_id"].(uuid.UUID)
	if patch.ExpectStatus == nil || (scoped && current.TournamentID != scope) {
		return fmt.Errorf("%w: %s", bracket.ErrUnknownMatch, id)
	}
	return fmt.Errorf("%w: match %s is %s, expected %s", bracket.ErrInvalidTransition, id, current.Status, *patch.ExpectStatus)
}

func (s *MongoStore) DeleteMatches(ctx context.Context, tournamentID uuid.UUID) error {
	_, err := s.Collections.Matches.DeleteMany(ctx, bson.M{"tournament_id": tournamentID})
	return err
}
