package devices

import (
	"context"

	"gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.ApiService/health"
	"gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.ApiService/implementation/devicesync"
	logger "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Logger"
	hardware_models "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Models/hardware"
	interfaces "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Repository/Interfaces"
)

// Options tunes DeviceService behaviour
type Options struct {
	// StrictUpdate makes SetDeviceState report ErrDeviceNotFound for ids
	// that match nothing instead of accepting them silently
	StrictUpdate bool

	// ResetPolicy is handed to the reconciler used by RepairNames
	ResetPolicy string
}

// DeviceService provides the device operations behind the HTTP API
type DeviceService struct {
	store     health.StoreState
	publisher interfaces.StatePublisher
	options   Options
	logger    *logger.Logger
	baseLog   *logger.Logger
}

// NewDeviceService creates a new device service
func NewDeviceService(store health.StoreState, publisher interfaces.StatePublisher, options Options, logger *logger.Logger) *DeviceService {
	return &DeviceService{
		store:     store,
		publisher: publisher,
		options:   options,
		logger:    logger.WithComponent("devices"),
		baseLog:   logger,
	}
}

// ListDevices returns every stored device as-is
func (s *DeviceService) ListDevices(ctx context.Context) ([]hardware_models.Device, error) {
	repo, err := s.store.Repository()
	if err != nil {
		return nil, err
	}
	return repo.ListDevices(ctx)
}

// GetDevice looks a device up by id
func (s *DeviceService) GetDevice(ctx context.Context, id string) (*hardware_models.Device, error) {
	repo, err := s.store.Repository()
	if err != nil {
		return nil, err
	}
	return repo.GetDevice(ctx, id)
}

// ToggleDevice flips the stored state and returns the new value. The read
// and the write are separate store calls, so concurrent toggles on one
// device can both write the same value.
func (s *DeviceService) ToggleDevice(ctx context.Context, id string) (bool, error) {
	repo, err := s.store.Repository()
	if err != nil {
		return false, err
	}

	device, err := repo.GetDevice(ctx, id)
	if err != nil {
		return false, err
	}

	newState := !device.State
	if _, err := repo.SetState(ctx, id, newState); err != nil {
		return false, err
	}

	s.publish(ctx, id, newState)
	return newState, nil
}

// SetDeviceState writes state onto the device with this id. Unless
// StrictUpdate is set an id that matches nothing still succeeds.
func (s *DeviceService) SetDeviceState(ctx context.Context, id string, state bool) (bool, error) {
	repo, err := s.store.Repository()
	if err != nil {
		return false, err
	}

	matched, err := repo.SetState(ctx, id, state)
	if err != nil {
		return false, err
	}

	if matched == 0 {
		if s.options.StrictUpdate {
			return false, interfaces.ErrDeviceNotFound
		}
		s.logger.Logger.Debug().Str("device_id", id).Msg("State update matched no device")
		return state, nil
	}

	s.publish(ctx, id, state)
	return state, nil
}

// RepairNames runs the name/type repair pass on demand
func (s *DeviceService) RepairNames(ctx context.Context) (int, error) {
	repo, err := s.store.Repository()
	if err != nil {
		return 0, err
	}
	return devicesync.NewReconciler(repo, s.options.ResetPolicy, s.baseLog).RepairNames(ctx)
}

func (s *DeviceService) publish(ctx context.Context, id string, state bool) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishState(ctx, id, state); err != nil {
		s.logger.WithField("device_id", id).WarnWithError(err, "Failed to publish device state")
	}
}
