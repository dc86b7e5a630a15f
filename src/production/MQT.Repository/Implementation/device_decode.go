package implementation

import (
	"math"
	"strconv"

	hardware_models "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Models/hardware"
	"go.mongodb.org/mongo-driver/bson"
)

// decodeDevice reads one stored document field by field. A field with an
// unexpected type keeps its zero value instead of failing the read, so
// callers always see every document in the collection.
func decodeDevice(raw bson.Raw) hardware_models.Device {
	var device hardware_models.Device

	id := raw.Lookup("_id")
	if oid, ok := id.ObjectIDOK(); ok {
		device.ID = oid.Hex()
	} else {
		device.ID = idString(id)
		device.Malformed = true
	}

	if pin, ok := integerValue(raw.Lookup("pin")); ok {
		device.Pin = pin
	} else {
		device.Malformed = true
	}

	device.Name, _ = raw.Lookup("name").StringValueOK()
	device.DeviceType, _ = raw.Lookup("device_type").StringValueOK()
	device.State, _ = raw.Lookup("state").BooleanOK()

	return device
}

// integerValue accepts any numeric BSON type holding a whole number
func integerValue(v bson.RawValue) (int, bool) {
	switch v.Type {
	case bson.TypeInt32:
		return int(v.Int32()), true
	case bson.TypeInt64:
		return int(v.Int64()), true
	case bson.TypeDouble:
		f := v.Double()
		if f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
			return 0, false
		}
		return int(f), true
	}
	return 0, false
}

func idString(v bson.RawValue) string {
	switch v.Type {
	case 0:
		return ""
	case bson.TypeString:
		return v.StringValue()
	case bson.TypeInt32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case bson.TypeInt64:
		return strconv.FormatInt(v.Int64(), 10)
	}
	return v.String()
}

// deviceDocument is the stored shape of a new record. The store assigns _id.
func deviceDocument(d hardware_models.Device) bson.D {
	return bson.D{
		{Key: "name", Value: d.Name},
		{Key: "pin", Value: d.Pin},
		{Key: "device_type", Value: d.DeviceType},
		{Key: "state", Value: d.State},
	}
}
