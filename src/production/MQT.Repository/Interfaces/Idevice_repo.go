package interfaces

import (
	"context"
	"errors"

	hardware_models "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Models/hardware"
)

var (
	// ErrDeviceNotFound is returned when no record has the requested id
	ErrDeviceNotFound = errors.New("device not found")

	// ErrInvalidDeviceID is returned when an id is not a valid object id
	ErrInvalidDeviceID = errors.New("invalid device id")

	// ErrStoreUnavailable is returned while the process runs without a store
	ErrStoreUnavailable = errors.New("database connection failed")
)

type DeviceRepository interface {
	// Read devices
	ListDevices(ctx context.Context) ([]hardware_models.Device, error)
	GetDevice(ctx context.Context, id string) (*hardware_models.Device, error)

	// Create devices, the store assigns ids
	CreateDevices(ctx context.Context, devices []hardware_models.Device) error

	// Update devices. SetState reports how many records matched the id and
	// treats a miss as success.
	SetState(ctx context.Context, id string, state bool) (int64, error)
	SetNameAndType(ctx context.Context, id string, name, deviceType string) error

	// Delete every device, returning how many were removed
	DeleteAllDevices(ctx context.Context) (int64, error)

	// Enforce one record per pin at the store level
	EnsurePinIndex(ctx context.Context) error
}
