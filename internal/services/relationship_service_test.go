package services

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"credibly/internal/models"
	"credibly/internal/utils"
	"credibly/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type relationshipFixture struct {
	users       *fakeUserRepo
	blocks      *fakeBlockRepo
	connections *fakeConnectionRepo
	activities  *fakeActivityRepo
	activity    ActivityService
	connect     ConnectionService
	block       BlockService
}

func newRelationshipFixture(t *testing.T) *relationshipFixture {
	t.Helper()
	f := &relationshipFixture{
		users:       newFakeUserRepo(),
		blocks:      &fakeBlockRepo{},
		connections: newFakeConnectionRepo(),
		activities:  &fakeActivityRepo{},
	}
	f.activity = NewActivityService(f.activities, f.connections, f.blocks, testLogger())
	f.connect = NewConnectionService(f.connections, f.blocks, f.users, f.activity, testLogger())
	f.block = NewBlockService(f.blocks, f.connections, f.users, testLogger())
	return f
}

func (f *relationshipFixture) member(email string) *Caller {
	user := f.users.add(&models.User{Email: email})
	return &Caller{UserID: user.ID, Role: user.Role, Email: user.Email}
}

func TestConnectionService_RequestAndAccept(t *testing.T) {
	f := newRelationshipFixture(t)
	ctx := context.Background()
	alice := f.member("alice@example.com")
	bob := f.member("bob@example.com")

	connection, err := f.connect.Request(ctx, alice, bob.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionStatusPending, connection.Status)

	_, err = f.connect.Request(ctx, bob, alice.UserID)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err), "one connection per unordered pair")

	_, err = f.connect.Accept(ctx, alice, connection.ID)
	assert.Equal(t, utils.KindAuthorization, utils.KindOf(err), "requester cannot accept")

	accepted, err := f.connect.Accept(ctx, bob, connection.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionStatusAccepted, accepted.Status)
	assert.Equal(t, 1, f.activities.count(models.ActivityConnectionAccepted))

	_, err = f.connect.Accept(ctx, bob, connection.ID)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))

	carol := f.member("carol@example.com")
	_, err = f.connect.Accept(ctx, carol, connection.ID)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err), "outsiders do not see the connection")
}

func TestConnectionService_RequestRules(t *testing.T) {
	f := newRelationshipFixture(t)
	ctx := context.Background()
	alice := f.member("alice@example.com")
	bob := f.member("bob@example.com")
	banned := f.member("banned@example.com")
	require.NoError(t, f.users.UpdateStatus(ctx, banned.UserID, models.UserStatusBanned))

	_, err := f.connect.Request(ctx, alice, alice.UserID)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	_, err = f.connect.Request(ctx, alice, banned.UserID)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	_, err = f.connect.Request(ctx, alice, primitive.NewObjectID())
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	_, err = f.block.Block(ctx, bob, alice.UserID, "")
	require.NoError(t, err)
	_, err = f.connect.Request(ctx, alice, bob.UserID)
	assert.Equal(t, utils.KindAuthorization, utils.KindOf(err))
}

func TestConnectionService_RemoveAndList(t *testing.T) {
	f := newRelationshipFixture(t)
	ctx := context.Background()
	alice := f.member("alice@example.com")
	bob := f.member("bob@example.com")
	carol := f.member("carol@example.com")

	first, err := f.connect.Request(ctx, alice, bob.UserID)
	require.NoError(t, err)
	_, err = f.connect.Request(ctx, carol, alice.UserID)
	require.NoError(t, err)
	_, err = f.connect.Accept(ctx, bob, first.ID)
	require.NoError(t, err)

	params := utils.NewPaginationParams(1, 20, "desc", "")
	_, total, err := f.connect.List(ctx, alice, "", params)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, total, err = f.connect.List(ctx, alice, models.ConnectionStatusPending, params)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, _, err = f.connect.List(ctx, alice, "friends", params)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	assert.Equal(t, utils.KindNotFound, utils.KindOf(f.connect.Remove(ctx, carol, first.ID)))
	require.NoError(t, f.connect.Remove(ctx, bob, first.ID))
	_, total, _ = f.connect.List(ctx, alice, models.ConnectionStatusAccepted, params)
	assert.Zero(t, total)
}

func TestBlockService_BlockMarksConnection(t *testing.T) {
	f := newRelationshipFixture(t)
	ctx := context.Background()
	alice := f.member("alice@example.com")
	bob := f.member("bob@example.com")

	connection, err := f.connect.Request(ctx, alice, bob.UserID)
	require.NoError(t, err)

	_, err = f.block.Block(ctx, alice, bob.UserID, "spam")
	require.NoError(t, err)

	stored, err := f.connections.GetByID(ctx, connection.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionStatusBlocked, stored.Status)

	err = f.connect.Remove(ctx, bob, connection.ID)
	assert.Equal(t, utils.KindAuthorization, utils.KindOf(err))

	_, err = f.block.Block(ctx, alice, bob.UserID, "")
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))

	_, err = f.block.Block(ctx, alice, alice.UserID, "")
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

func TestBlockService_Unblock(t *testing.T) {
	f := newRelationshipFixture(t)
	ctx := context.Background()
	alice := f.member("alice@example.com")
	bob := f.member("bob@example.com")

	connection, err := f.connect.Request(ctx, alice, bob.UserID)
	require.NoError(t, err)
	_, err = f.block.Block(ctx, alice, bob.UserID, "")
	require.NoError(t, err)
	_, err = f.block.Block(ctx, bob, alice.UserID, "")
	require.NoError(t, err)

	require.NoError(t, f.block.Unblock(ctx, alice, bob.UserID))
	_, err = f.connections.GetByID(ctx, connection.ID)
	assert.NoError(t, err, "connection stays while bob still blocks alice")

	require.NoError(t, f.block.Unblock(ctx, bob, alice.UserID))
	_, err = f.connections.GetByID(ctx, connection.ID)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	err = f.block.Unblock(ctx, bob, alice.UserID)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	_, total, err := f.block.List(ctx, alice, utils.NewPaginationParams(1, 20, "desc", ""))
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestBlockService_UnblockSucceedsWhenCleanupFails(t *testing.T) {
	f := newRelationshipFixture(t)
	ctx := context.Background()
	alice := f.member("alice@example.com")
	bob := f.member("bob@example.com")
	carol := f.member("carol@example.com")

	_, err := f.block.Block(ctx, alice, bob.UserID, "")
	require.NoError(t, err)
	_, err = f.block.Block(ctx, alice, carol.UserID, "")
	require.NoError(t, err)

	f.blocks.existsErr = errStorageDown
	assert.NoError(t, f.block.Unblock(ctx, alice, bob.UserID), "reverse-block lookup failure")
	f.blocks.existsErr = nil

	f.connections.getByPairErr = errStorageDown
	assert.NoError(t, f.block.Unblock(ctx, alice, carol.UserID), "connection lookup failure")
	f.connections.getByPairErr = nil

	_, total, err := f.block.List(ctx, alice, utils.NewPaginationParams(1, 20, "desc", ""))
	require.NoError(t, err)
	assert.Zero(t, total, "both blocks are removed")
}

func TestRelationshipServices_LogRequestID(t *testing.T) {
	f := newRelationshipFixture(t)
	var buf bytes.Buffer
	log := logger.NewWriterLogger(&buf)
	f.connect = NewConnectionService(f.connections, f.blocks, f.users, f.activity, log)
	f.block = NewBlockService(f.blocks, f.connections, f.users, log)

	ctx := context.WithValue(context.Background(), logger.RequestIDKey, "req-42")
	alice := f.member("alice@example.com")
	bob := f.member("bob@example.com")

	_, err := f.connect.Request(ctx, alice, bob.UserID)
	require.NoError(t, err)
	_, err = f.block.Block(ctx, alice, bob.UserID, "")
	require.NoError(t, err)
	require.NoError(t, f.block.Unblock(ctx, alice, bob.UserID))

	actions := 0
	for _, raw := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var line map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &line))
		if line["type"] != "user_action" {
			continue
		}
		actions++
		assert.Equal(t, "req-42", line["request_id"], line["action"])
	}
	assert.Equal(t, 3, actions)
}

func TestActivityService_Feed(t *testing.T) {
	f := newRelationshipFixture(t)
	ctx := context.Background()
	alice := f.member("alice@example.com")
	bob := f.member("bob@example.com")
	carol := f.member("carol@example.com")
	stranger := f.member("stranger@example.com")

	for _, peer := range []*Caller{bob, carol} {
		connection, err := f.connect.Request(ctx, alice, peer.UserID)
		require.NoError(t, err)
		_, err = f.connect.Accept(ctx, peer, connection.ID)
		require.NoError(t, err)
	}

	f.activity.Record(ctx, &models.Activity{Type: models.ActivityRatingReceived, ActorID: bob.UserID, SubjectID: stranger.UserID})
	f.activity.Record(ctx, &models.Activity{Type: models.ActivityRatingReceived, ActorID: carol.UserID, SubjectID: stranger.UserID})
	f.activity.Record(ctx, &models.Activity{Type: models.ActivityUserJoined, ActorID: stranger.UserID, SubjectID: stranger.UserID})

	params := utils.NewPaginationParams(1, 20, "desc", "")
	feed, total, err := f.activity.Feed(ctx, alice, params)
	require.NoError(t, err)
	// Two connection_accepted entries plus the two ratings by peers.
	assert.Equal(t, int64(4), total)
	for _, entry := range feed {
		assert.NotEqual(t, models.ActivityUserJoined, entry.Type)
	}

	_, err = f.block.Block(ctx, carol, alice.UserID, "")
	require.NoError(t, err)
	feed, _, err = f.activity.Feed(ctx, alice, params)
	require.NoError(t, err)
	for _, entry := range feed {
		assert.NotEqual(t, carol.UserID, entry.ActorID)
		assert.NotEqual(t, carol.UserID, entry.SubjectID)
	}
}

func TestActivityService_RecordSwallowsErrors(t *testing.T) {
	f := newRelationshipFixture(t)
	f.activities.err = errStorageDown

	assert.NotPanics(t, func() {
		f.activity.Record(context.Background(), &models.Activity{Type: models.ActivityUserJoined})
	})
}
