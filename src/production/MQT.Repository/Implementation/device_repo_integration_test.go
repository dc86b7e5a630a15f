//go:build integration

package implementation

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.ApiService/implementation/devicesync"
	config "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Config"
	logger "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Logger"
	hardware_models "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Models/hardware"
	interfaces "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Integration tests for the Mongo repository.
// These tests require a reachable MongoDB at MONGODB_TEST_URI.
//
// Run with:
//   MONGODB_TEST_URI=mongodb://localhost:27017 go test -tags=integration ./src/production/MQT.Repository/...

func setupMongoRepo(t *testing.T) *MongoDeviceRepository {
	t.Helper()

	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	coll := client.Database("led_panel_test").Collection("devices_" + primitive.NewObjectID().Hex())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = coll.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	return NewMongoDeviceRepository(coll)
}

func TestIntegration_MongoDeviceRepository_Lifecycle(t *testing.T) {
	repo := setupMongoRepo(t)
	ctx := context.Background()

	devices := make([]hardware_models.Device, 0)
	for _, led := range hardware_models.CanonicalLEDs() {
		devices = append(devices, led.NewDevice())
	}
	require.NoError(t, repo.CreateDevices(ctx, devices))

	listed, err := repo.ListDevices(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 4)

	id := listed[0].ID
	matched, err := repo.SetState(ctx, id, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), matched)

	require.NoError(t, repo.SetNameAndType(ctx, id, "renamed", "relay"))

	got, err := repo.GetDevice(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.State)
	assert.Equal(t, "renamed", got.Name)

	matched, err = repo.SetState(ctx, primitive.NewObjectID().Hex(), true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), matched)

	_, err = repo.GetDevice(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, interfaces.ErrDeviceNotFound)

	require.NoError(t, repo.EnsurePinIndex(ctx))
	assert.Error(t, repo.CreateDevices(ctx, []hardware_models.Device{{Pin: 17}}))

	deleted, err := repo.DeleteAllDevices(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
}

func TestIntegration_MongoDeviceRepository_MalformedDocuments(t *testing.T) {
	repo := setupMongoRepo(t)
	ctx := context.Background()

	_, err := repo.coll.InsertMany(ctx, []interface{}{
		bson.D{{Key: "name", Value: "LED 1"}, {Key: "pin", Value: "17"}, {Key: "device_type", Value: "led 1"}, {Key: "state", Value: true}},
		bson.D{{Key: "_id", Value: "led-two"}, {Key: "name", Value: "LED 2"}, {Key: "pin", Value: 27}, {Key: "device_type", Value: "led 2"}},
		bson.D{{Key: "name", Value: int32(3)}, {Key: "pin", Value: 22}, {Key: "device_type", Value: "led 3"}},
		bson.D{{Key: "name", Value: "LED 4"}, {Key: "pin", Value: 18.5}, {Key: "device_type", Value: "led 4"}},
	})
	require.NoError(t, err)

	listed, err := repo.ListDevices(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 4)
	assert.True(t, listed[0].Malformed)
	assert.Equal(t, "led-two", listed[1].ID)
	assert.True(t, listed[1].Malformed)
	assert.Empty(t, listed[2].Name)
	assert.True(t, listed[3].Malformed)

	result, err := devicesync.NewReconciler(repo, config.ResetPolicyDiscard, logger.Nop()).Synchronize(ctx)
	require.NoError(t, err)
	assert.True(t, result.Reset)
	assert.Equal(t, 4, result.Deleted)

	listed, err = repo.ListDevices(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 4)
	for i, led := range hardware_models.CanonicalLEDs() {
		assert.False(t, listed[i].Malformed)
		assert.Equal(t, led.Pin, listed[i].Pin)
		assert.Equal(t, led.Name, listed[i].Name)
		assert.False(t, listed[i].State)
	}
}
