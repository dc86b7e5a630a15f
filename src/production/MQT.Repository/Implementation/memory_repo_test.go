package implementation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	hardware_models "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Models/hardware"
	interfaces "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseDeviceID(t *testing.T) {
	id := primitive.NewObjectID()

	oid, err := parseDeviceID(id.Hex())
	require.NoError(t, err)
	assert.Equal(t, id, oid)

	_, err = parseDeviceID("nonexistent-id")
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrInvalidDeviceID))
	assert.Contains(t, err.Error(), "nonexistent-id")
}

func TestMemoryDeviceRepository_CreateListGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDeviceRepository()

	leds := hardware_models.CanonicalLEDs()
	devices := make([]hardware_models.Device, 0, len(leds))
	for _, led := range leds {
		devices = append(devices, led.NewDevice())
	}
	require.NoError(t, repo.CreateDevices(ctx, devices))

	listed, err := repo.ListDevices(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 4)
	for i, d := range listed {
		assert.NotEmpty(t, d.ID)
		assert.Equal(t, leds[i].Pin, d.Pin)
	}

	got, err := repo.GetDevice(ctx, listed[2].ID)
	require.NoError(t, err)
	assert.Equal(t, listed[2], *got)

	_, err = repo.GetDevice(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, interfaces.ErrDeviceNotFound)

	_, err = repo.GetDevice(ctx, "zzz")
	assert.ErrorIs(t, err, interfaces.ErrInvalidDeviceID)
}

func TestMemoryDeviceRepository_ListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDeviceRepository()
	repo.Seed(hardware_models.Device{Name: "LED 1", Pin: 17})

	listed, err := repo.ListDevices(ctx)
	require.NoError(t, err)
	listed[0].Name = "mutated"

	again, err := repo.ListDevices(ctx)
	require.NoError(t, err)
	assert.Equal(t, "LED 1", again[0].Name)
}

func TestMemoryDeviceRepository_SetState(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDeviceRepository()
	seeded := repo.Seed(hardware_models.Device{Name: "LED 1", Pin: 17})

	matched, err := repo.SetState(ctx, seeded[0].ID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), matched)

	got, err := repo.GetDevice(ctx, seeded[0].ID)
	require.NoError(t, err)
	assert.True(t, got.State)

	matched, err = repo.SetState(ctx, primitive.NewObjectID().Hex(), true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), matched)

	_, err = repo.SetState(ctx, "bad", true)
	assert.ErrorIs(t, err, interfaces.ErrInvalidDeviceID)
}

func TestMemoryDeviceRepository_SetNameAndTypeLeavesState(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDeviceRepository()
	seeded := repo.Seed(hardware_models.Device{Name: "old", Pin: 17, DeviceType: "old", State: true})

	require.NoError(t, repo.SetNameAndType(ctx, seeded[0].ID, "LED 1", "led 1"))

	got, err := repo.GetDevice(ctx, seeded[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "LED 1", got.Name)
	assert.Equal(t, "led 1", got.DeviceType)
	assert.True(t, got.State)
}

func TestMemoryDeviceRepository_DeleteAll(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDeviceRepository()
	repo.Seed(hardware_models.Device{Pin: 17}, hardware_models.Device{Pin: 27})

	deleted, err := repo.DeleteAllDevices(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	listed, err := repo.ListDevices(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestMemoryDeviceRepository_EnsurePinIndex(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects existing duplicates", func(t *testing.T) {
		repo := NewMemoryDeviceRepository()
		repo.Seed(hardware_models.Device{Pin: 17}, hardware_models.Device{Pin: 17})
		assert.Error(t, repo.EnsurePinIndex(ctx))
	})

	t.Run("blocks later duplicates", func(t *testing.T) {
		repo := NewMemoryDeviceRepository()
		repo.Seed(hardware_models.Device{Pin: 17})
		require.NoError(t, repo.EnsurePinIndex(ctx))

		err := repo.CreateDevices(ctx, []hardware_models.Device{{Pin: 17}})
		assert.Error(t, err)

		require.NoError(t, repo.CreateDevices(ctx, []hardware_models.Device{{Pin: 27}}))
	})
}
