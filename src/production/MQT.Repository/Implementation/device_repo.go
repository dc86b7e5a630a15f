package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	hardware_models "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Models/hardware"
	interfaces "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	readTimeout  = 5 * time.Second
	writeTimeout = 3 * time.Second
	bulkTimeout  = 10 * time.Second

	pinIndexName = "pin_unique"
)

type MongoDeviceRepository struct {
	coll *mongo.Collection
}

func NewMongoDeviceRepository(coll *mongo.Collection) *MongoDeviceRepository {
	return &MongoDeviceRepository{coll: coll}
}

// Read devices
func (r *MongoDeviceRepository) ListDevices(ctx context.Context) ([]hardware_models.Device, error) {
	ctx, cancel := context.WithTimeout(ctx, bulkTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	devices := make([]hardware_models.Device, 0)
	for cursor.Next(ctx) {
		devices = append(devices, decodeDevice(cursor.Current))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to read devices: %w", err)
	}

	return devices, nil
}

func (r *MongoDeviceRepository) GetDevice(ctx context.Context, id string) (*hardware_models.Device, error) {
	oid, err := parseDeviceID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	raw, err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrDeviceNotFound
		}
		return nil, err
	}

	device := decodeDevice(raw)
	return &device, nil
}

// Create devices
func (r *MongoDeviceRepository) CreateDevices(ctx context.Context, devices []hardware_models.Device) error {
	if len(devices) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, bulkTimeout)
	defer cancel()

	docs := make([]interface{}, 0, len(devices))
	for i := range devices {
		docs = append(docs, deviceDocument(devices[i]))
	}
	_, err := r.coll.InsertMany(ctx, docs)
	return err
}

// Update devices
func (r *MongoDeviceRepository) SetState(ctx context.Context, id string, state bool) (int64, error) {
	oid, err := parseDeviceID(id)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"state": state}})
	if err != nil {
		return 0, err
	}

	return result.MatchedCount, nil
}

func (r *MongoDeviceRepository) SetNameAndType(ctx context.Context, id string, name, deviceType string) error {
	oid, err := parseDeviceID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"name":        name,
		"device_type": deviceType,
	}})
	return err
}

// Delete devices
func (r *MongoDeviceRepository) DeleteAllDevices(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, bulkTimeout)
	defer cancel()

	result, err := r.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}

// EnsurePinIndex creates a unique index on pin. It fails while duplicate
// pins exist in the collection.
func (r *MongoDeviceRepository) EnsurePinIndex(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, bulkTimeout)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "pin", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(pinIndexName),
	})
	if err != nil {
		return fmt.Errorf("failed to create pin index: %w", err)
	}
	return nil
}

var _ interfaces.DeviceRepository = (*MongoDeviceRepository)(nil)
