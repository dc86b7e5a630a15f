package implementation

import (
	"fmt"

	interfaces "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// parseDeviceID converts the hex form used on the wire into an object id
func parseDeviceID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q is not a 24-character hex object id", interfaces.ErrInvalidDeviceID, id)
	}
	return oid, nil
}
