package health

import (
	"fmt"

	interfaces "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Repository/Interfaces"
)

// StoreState is either a connected repository or the reason there is none.
// It is checked once per request instead of a nullable global handle.
type StoreState struct {
	repo   interfaces.DeviceRepository
	reason error
}

// Connected wraps a usable repository
func Connected(repo interfaces.DeviceRepository) StoreState {
	return StoreState{repo: repo}
}

// Unavailable records why the process runs without a store
func Unavailable(reason error) StoreState {
	if reason == nil {
		reason = fmt.Errorf("no store configured")
	}
	return StoreState{reason: reason}
}

// Available reports whether a repository is present
func (s StoreState) Available() bool {
	return s.repo != nil
}

// Reason returns the error that put the process into degraded mode
func (s StoreState) Reason() error {
	if s.repo != nil {
		return nil
	}
	if s.reason == nil {
		return fmt.Errorf("no store configured")
	}
	return s.reason
}

// Repository returns the repository, or an error wrapping
// interfaces.ErrStoreUnavailable in degraded mode
func (s StoreState) Repository() (interfaces.DeviceRepository, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, s.Reason())
	}
	return s.repo, nil
}
