package devicesync

import (
	"context"
	"fmt"

	config "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Config"
	logger "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Logger"
	hardware_models "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Models/hardware"
	interfaces "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Repository/Interfaces"
)

// SyncResult summarises one Synchronize run
type SyncResult struct {
	Created  int  `json:"created"`
	Reset    bool `json:"reset"`
	Deleted  int  `json:"deleted"`
	Repaired int  `json:"repaired"`
}

// Reconciler brings the device collection in line with the canonical LEDs
type Reconciler struct {
	deviceRepo  interfaces.DeviceRepository
	leds        []hardware_models.LEDDescriptor
	resetPolicy string
	logger      *logger.Logger
}

// NewReconciler creates a reconciler for the canonical LED set
func NewReconciler(deviceRepo interfaces.DeviceRepository, resetPolicy string, logger *logger.Logger) *Reconciler {
	if resetPolicy == "" {
		resetPolicy = config.ResetPolicyDiscard
	}
	return &Reconciler{
		deviceRepo:  deviceRepo,
		leds:        hardware_models.CanonicalLEDs(),
		resetPolicy: resetPolicy,
		logger:      logger.WithComponent("devicesync"),
	}
}

// Synchronize populates an empty collection, rebuilds one that has drifted
// structurally, then repairs names and types in place. Any store error
// aborts the run.
func (r *Reconciler) Synchronize(ctx context.Context) (*SyncResult, error) {
	result := &SyncResult{}

	existing, err := r.deviceRepo.ListDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	if len(existing) == 0 {
		r.logger.Info("No devices found in database. Creating LED devices...")
		created, err := r.createAll(ctx, nil)
		if err != nil {
			return nil, err
		}
		result.Created = created
	} else if r.needsReset(existing) {
		r.logger.Logger.Warn().
			Int("existing", len(existing)).
			Str("policy", r.resetPolicy).
			Msg("Device collection does not match LED configuration, resetting")

		deleted, err := r.deviceRepo.DeleteAllDevices(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to delete devices: %w", err)
		}
		result.Reset = true
		result.Deleted = int(deleted)

		var carried map[int]bool
		if r.resetPolicy == config.ResetPolicyPreserve {
			carried = statesByPin(existing)
		}
		created, err := r.createAll(ctx, carried)
		if err != nil {
			return nil, err
		}
		result.Created = created
	}

	repaired, err := r.RepairNames(ctx)
	if err != nil {
		return nil, err
	}
	result.Repaired = repaired

	r.logger.Logger.Info().
		Int("created", result.Created).
		Bool("reset", result.Reset).
		Int("repaired", result.Repaired).
		Msg("Device synchronization complete")

	return result, nil
}

// RepairNames corrects name and device_type on every record whose pin
// belongs to a canonical LED, leaving state alone. Malformed records are
// skipped. It returns the number of records changed.
func (r *Reconciler) RepairNames(ctx context.Context) (int, error) {
	devices, err := r.deviceRepo.ListDevices(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list devices: %w", err)
	}

	updated := 0
	for _, device := range devices {
		if device.Malformed {
			r.logger.Logger.Warn().
				Str("device_id", device.ID).
				Msg("Skipping malformed device record")
			continue
		}
		led, ok := r.descriptorFor(device.Pin)
		if !ok || led.Matches(device) {
			continue
		}
		if err := r.deviceRepo.SetNameAndType(ctx, device.ID, led.Name, led.DeviceType); err != nil {
			return updated, fmt.Errorf("failed to repair device %s: %w", device.ID, err)
		}
		r.logger.Logger.Debug().
			Int("pin", device.Pin).
			Str("from", device.Name).
			Str("to", led.Name).
			Msg("Repaired device name")
		updated++
	}

	return updated, nil
}

// needsReset decides whether the collection must be rebuilt. For each
// canonical pin only the first record with that pin is compared, and a
// malformed record never matches.
func (r *Reconciler) needsReset(existing []hardware_models.Device) bool {
	if len(existing) != len(r.leds) {
		return true
	}

	for _, led := range r.leds {
		var match *hardware_models.Device
		for i := range existing {
			if existing[i].Pin == led.Pin {
				match = &existing[i]
				break
			}
		}
		if match == nil {
			return true
		}
		if !led.Matches(*match) {
			return true
		}
	}

	return false
}

func (r *Reconciler) createAll(ctx context.Context, carried map[int]bool) (int, error) {
	devices := make([]hardware_models.Device, 0, len(r.leds))
	for _, led := range r.leds {
		device := led.NewDevice()
		device.State = carried[led.Pin]
		devices = append(devices, device)
	}

	if err := r.deviceRepo.CreateDevices(ctx, devices); err != nil {
		return 0, fmt.Errorf("failed to create devices: %w", err)
	}
	return len(devices), nil
}

func (r *Reconciler) descriptorFor(pin int) (hardware_models.LEDDescriptor, bool) {
	for _, led := range r.leds {
		if led.Pin == pin {
			return led, true
		}
	}
	return hardware_models.LEDDescriptor{}, false
}

// statesByPin keeps the state of the first record seen for each pin
func statesByPin(devices []hardware_models.Device) map[int]bool {
	states := make(map[int]bool, len(devices))
	for _, d := range devices {
		if _, seen := states[d.Pin]; !seen {
			states[d.Pin] = d.State
		}
	}
	return states
}
