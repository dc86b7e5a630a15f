package implementation

import (
	"context"
	"fmt"
	"sync"

	hardware_models "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Models/hardware"
	interfaces "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryDeviceRepository keeps devices in process memory in insertion order.
// Each call is atomic on its own, like a single-document store operation.
type MemoryDeviceRepository struct {
	mu         sync.RWMutex
	devices    []hardware_models.Device
	uniquePins bool
}

func NewMemoryDeviceRepository() *MemoryDeviceRepository {
	return &MemoryDeviceRepository{}
}

// Read devices
func (r *MemoryDeviceRepository) ListDevices(ctx context.Context) ([]hardware_models.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	devices := make([]hardware_models.Device, len(r.devices))
	copy(devices, r.devices)
	return devices, nil
}

func (r *MemoryDeviceRepository) GetDevice(ctx context.Context, id string) (*hardware_models.Device, error) {
	oid, err := parseDeviceID(id)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(oid); i >= 0 {
		device := r.devices[i]
		return &device, nil
	}
	return nil, interfaces.ErrDeviceNotFound
}

// Create devices
func (r *MemoryDeviceRepository) CreateDevices(ctx context.Context, devices []hardware_models.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.uniquePins {
		seen := make(map[int]bool, len(r.devices)+len(devices))
		for _, d := range r.devices {
			seen[d.Pin] = true
		}
		for _, d := range devices {
			if seen[d.Pin] {
				return fmt.Errorf("duplicate key on index %s: pin %d", pinIndexName, d.Pin)
			}
			seen[d.Pin] = true
		}
	}

	for _, d := range devices {
		if d.ID == "" {
			d.ID = primitive.NewObjectID().Hex()
		}
		r.devices = append(r.devices, d)
	}
	return nil
}

// Update devices
func (r *MemoryDeviceRepository) SetState(ctx context.Context, id string, state bool) (int64, error) {
	oid, err := parseDeviceID(id)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(oid)
	if i < 0 {
		return 0, nil
	}
	r.devices[i].State = state
	return 1, nil
}

func (r *MemoryDeviceRepository) SetNameAndType(ctx context.Context, id string, name, deviceType string) error {
	oid, err := parseDeviceID(id)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.indexOf(oid); i >= 0 {
		r.devices[i].Name = name
		r.devices[i].DeviceType = deviceType
	}
	return nil
}

// Delete devices
func (r *MemoryDeviceRepository) DeleteAllDevices(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := int64(len(r.devices))
	r.devices = nil
	return deleted, nil
}

func (r *MemoryDeviceRepository) EnsurePinIndex(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[int]bool, len(r.devices))
	for _, d := range r.devices {
		if seen[d.Pin] {
			return fmt.Errorf("failed to create pin index: duplicate pin %d", d.Pin)
		}
		seen[d.Pin] = true
	}
	r.uniquePins = true
	return nil
}

// Seed inserts records verbatim, including malformed ones. Records without
// an id get one.
func (r *MemoryDeviceRepository) Seed(devices ...hardware_models.Device) []hardware_models.Device {
	r.mu.Lock()
	defer r.mu.Unlock()

	seeded := make([]hardware_models.Device, 0, len(devices))
	for _, d := range devices {
		if d.ID == "" {
			d.ID = primitive.NewObjectID().Hex()
		}
		r.devices = append(r.devices, d)
		seeded = append(seeded, d)
	}
	return seeded
}

func (r *MemoryDeviceRepository) indexOf(oid primitive.ObjectID) int {
	for i := range r.devices {
		if !r.devices[i].Malformed && r.devices[i].ID == oid.Hex() {
			return i
		}
	}
	return -1
}

var _ interfaces.DeviceRepository = (*MemoryDeviceRepository)(nil)
