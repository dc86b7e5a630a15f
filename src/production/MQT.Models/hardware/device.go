package hardware_models

// Device is a persisted LED record. Only State changes after creation,
// except when the reconciler repairs Name and DeviceType.
//
// ID is the string form of the stored identifier, the hex form for object
// ids. Malformed is set by the store when the identifier is not an object
// id or the pin is missing or not an integer; such a record never matches a
// canonical LED.
type Device struct {
	ID         string `json:"_id" bson:"_id,omitempty"`
	Name       string `json:"name" bson:"name"`
	Pin        int    `json:"pin" bson:"pin"`
	DeviceType string `json:"device_type" bson:"device_type"`
	State      bool   `json:"state" bson:"state"`
	Malformed  bool   `json:"-" bson:"-"`
}

// LEDDescriptor is one compiled-in LED definition
type LEDDescriptor struct {
	Name       string `json:"name"`
	Pin        int    `json:"pin"`
	DeviceType string `json:"device_type"`
}

// NewDevice builds an unsaved, switched-off record for the descriptor
func (d LEDDescriptor) NewDevice() Device {
	return Device{
		Name:       d.Name,
		Pin:        d.Pin,
		DeviceType: d.DeviceType,
		State:      false,
	}
}

// Matches reports whether the record carries the descriptor's name and type
func (d LEDDescriptor) Matches(device Device) bool {
	return !device.Malformed && device.Name == d.Name && device.DeviceType == d.DeviceType
}

// CanonicalLEDs returns the four LEDs wired to the board, one per GPIO pin
func CanonicalLEDs() []LEDDescriptor {
	return []LEDDescriptor{
		{Name: "LED 1", Pin: 17, DeviceType: "led 1"},
		{Name: "LED 2", Pin: 27, DeviceType: "led 2"},
		{Name: "LED 3", Pin: 22, DeviceType: "led 3"},
		{Name: "LED 4", Pin: 18, DeviceType: "led 4"},
	}
}
