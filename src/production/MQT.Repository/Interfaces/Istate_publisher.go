package interfaces

import "context"

// StatePublisher fans device state changes out to listeners on the board side
type StatePublisher interface {
	PublishState(ctx context.Context, deviceID string, state bool) error
	Close()
}
