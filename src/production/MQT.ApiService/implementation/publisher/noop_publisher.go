package publisher

import (
	"context"

	interfaces "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Repository/Interfaces"
)

// NoopPublisher is used when MQTT is disabled
type NoopPublisher struct{}

func (NoopPublisher) PublishState(ctx context.Context, deviceID string, state bool) error {
	return nil
}

func (NoopPublisher) Close() {}

var _ interfaces.StatePublisher = NoopPublisher{}
