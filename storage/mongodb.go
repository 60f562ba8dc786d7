package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"navarch/core"
)

// MongoDB is the alternative backend for deployments that already run a
// document store. One geometry document per vessel holds the complete grid,
// so geometry replacement is a single document swap.
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
	Logger   *zap.SugaredLogger
}

// geometryDoc is the stored form of a vessel's offset table.
type geometryDoc struct {
	VesselID   string           `bson:"_id"`
	Stations   []core.Station   `bson:"stations"`
	Waterlines []core.Waterline `bson:"waterlines"`
	Offsets    []core.Offset    `bson:"offsets"`
	UpdatedAt  time.Time        `bson:"updated_at"`
}

// NewMongoDB connects to MongoDB, verifies the connection, and ensures
// indexes.
func NewMongoDB(uri, dbName string, maxPoolSize uint64, logger *zap.SugaredLogger) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri).SetMaxPoolSize(maxPoolSize)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m := &MongoDB{
		Client:   client,
		Database: client.Database(dbName),
		Logger:   logger,
	}
	if err := m.ensureIndexes(ctx); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("Connected to MongoDB successfully")
	}
	return m, nil
}

func (m *MongoDB) ensureIndexes(ctx context.Context) error {
	_, err := m.loadcases().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "vessel_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create loadcase index: %w", err)
	}
	return nil
}

func (m *MongoDB) vessels() *mongo.Collection    { return m.Database.Collection("vessels") }
func (m *MongoDB) geometries() *mongo.Collection { return m.Database.Collection("geometries") }
func (m *MongoDB) loadcases() *mongo.Collection  { return m.Database.Collection("loadcases") }

// HealthCheck pings the server.
func (m *MongoDB) HealthCheck(ctx context.Context) error {
	return m.Client.Ping(ctx, nil)
}

// Close disconnects the client.
func (m *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}

// GetVessels returns a page of vessels ordered by creation time.
func (m *MongoDB) GetVessels(ctx context.Context, limit, offset int) ([]core.Vessel, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))
	cursor, err := m.vessels().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query vessels: %w", err)
	}
	defer cursor.Close(ctx)

	var vessels []core.Vessel
	if err := cursor.All(ctx, &vessels); err != nil {
		return nil, fmt.Errorf("failed to decode vessels: %w", err)
	}
	return vessels, nil
}

// GetVesselCount returns the total number of vessels.
func (m *MongoDB) GetVesselCount(ctx context.Context) (int64, error) {
	count, err := m.vessels().CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count vessels: %w", err)
	}
	return count, nil
}

// GetVessel returns one vessel by ID.
func (m *MongoDB) GetVessel(ctx context.Context, id string) (*core.Vessel, error) {
	var v core.Vessel
	err := m.vessels().FindOne(ctx, bson.M{"_id": id}).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.ErrVesselNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vessel: %w", err)
	}
	return &v, nil
}

// CreateVessel inserts a new vessel.
func (m *MongoDB) CreateVessel(ctx context.Context, v *core.Vessel) error {
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now
	v.GeometryRev = 0

	if _, err := m.vessels().InsertOne(ctx, v); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateVessel
		}
		return fmt.Errorf("failed to insert vessel: %w", err)
	}
	return nil
}

// UpdateVessel updates name and description.
func (m *MongoDB) UpdateVessel(ctx context.Context, id string, v *core.Vessel) error {
	v.UpdatedAt = time.Now().UTC()
	res, err := m.vessels().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":        v.Name,
		"description": v.Description,
		"updated_at":  v.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("failed to update vessel: %w", err)
	}
	if res.MatchedCount == 0 {
		return core.ErrVesselNotFound
	}
	v.ID = id
	return nil
}

// DeleteVessel removes a vessel with its geometry and loadcases.
func (m *MongoDB) DeleteVessel(ctx context.Context, id string) error {
	res, err := m.vessels().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete vessel: %w", err)
	}
	if res.DeletedCount == 0 {
		return core.ErrVesselNotFound
	}

	// No multi-document transaction: orphans from a partial delete are
	// unreachable through the API and harmless.
	if _, err := m.geometries().DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete geometry: %w", err)
	}
	if _, err := m.loadcases().DeleteMany(ctx, bson.M{"vessel_id": id}); err != nil {
		return fmt.Errorf("failed to delete loadcases: %w", err)
	}
	return nil
}

// GetGeometry loads and validates the vessel's offset table.
func (m *MongoDB) GetGeometry(ctx context.Context, vesselID string) (*core.Geometry, error) {
	if _, err := m.GetVessel(ctx, vesselID); err != nil {
		return nil, err
	}

	var doc geometryDoc
	err := m.geometries().FindOne(ctx, bson.M{"_id": vesselID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.ErrGeometryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get geometry: %w", err)
	}

	geom, err := core.NewGeometry(doc.Stations, doc.Waterlines, doc.Offsets)
	if err != nil {
		var ge *core.GeometryError
		if errors.As(err, &ge) {
			ge.VesselID = vesselID
		}
		return nil, err
	}
	return geom, nil
}

// ReplaceGeometry swaps the geometry document and bumps the vessel's
// revision. Validation happens before any write.
func (m *MongoDB) ReplaceGeometry(ctx context.Context, vesselID string, stations []core.Station, waterlines []core.Waterline, offsets []core.Offset) error {
	if _, err := core.NewGeometry(stations, waterlines, offsets); err != nil {
		var ge *core.GeometryError
		if errors.As(err, &ge) {
			ge.VesselID = vesselID
		}
		return err
	}

	now := time.Now().UTC()
	res, err := m.vessels().UpdateOne(ctx, bson.M{"_id": vesselID}, bson.M{
		"$inc": bson.M{"geometry_rev": 1},
		"$set": bson.M{"updated_at": now},
	})
	if err != nil {
		return fmt.Errorf("failed to bump geometry revision: %w", err)
	}
	if res.MatchedCount == 0 {
		return core.ErrVesselNotFound
	}

	doc := geometryDoc{
		VesselID:   vesselID,
		Stations:   stations,
		Waterlines: waterlines,
		Offsets:    offsets,
		UpdatedAt:  now,
	}
	_, err = m.geometries().ReplaceOne(ctx, bson.M{"_id": vesselID}, doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to replace geometry: %w", err)
	}

	if m.Logger != nil {
		m.Logger.Infow("Replaced geometry",
			"vessel_id", vesselID,
			"stations", len(stations),
			"waterlines", len(waterlines),
			"offsets", len(offsets))
	}
	return nil
}

// DeleteGeometry removes the vessel's geometry document and bumps the
// revision.
func (m *MongoDB) DeleteGeometry(ctx context.Context, vesselID string) error {
	res, err := m.vessels().UpdateOne(ctx, bson.M{"_id": vesselID}, bson.M{
		"$inc": bson.M{"geometry_rev": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to bump geometry revision: %w", err)
	}
	if res.MatchedCount == 0 {
		return core.ErrVesselNotFound
	}

	if _, err := m.geometries().DeleteOne(ctx, bson.M{"_id": vesselID}); err != nil {
		return fmt.Errorf("failed to delete geometry: %w", err)
	}
	return nil
}

// GetLoadcase returns one loadcase by ID.
func (m *MongoDB) GetLoadcase(ctx context.Context, loadcaseID string) (*core.Loadcase, error) {
	var lc core.Loadcase
	err := m.loadcases().FindOne(ctx, bson.M{"_id": loadcaseID}).Decode(&lc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.ErrLoadcaseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get loadcase: %w", err)
	}
	return &lc, nil
}

// GetLoadcases returns all loadcases belonging to a vessel.
func (m *MongoDB) GetLoadcases(ctx context.Context, vesselID string) ([]core.Loadcase, error) {
	if _, err := m.GetVessel(ctx, vesselID); err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := m.loadcases().Find(ctx, bson.M{"vessel_id": vesselID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query loadcases: %w", err)
	}
	defer cursor.Close(ctx)

	var loadcases []core.Loadcase
	if err := cursor.All(ctx, &loadcases); err != nil {
		return nil, fmt.Errorf("failed to decode loadcases: %w", err)
	}
	return loadcases, nil
}

// CreateLoadcase inserts a new loadcase for an existing vessel.
func (m *MongoDB) CreateLoadcase(ctx context.Context, lc *core.Loadcase) error {
	if _, err := m.GetVessel(ctx, lc.VesselID); err != nil {
		return err
	}

	now := time.Now().UTC()
	lc.CreatedAt = now
	lc.UpdatedAt = now

	if _, err := m.loadcases().InsertOne(ctx, lc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateLoadcase
		}
		return fmt.Errorf("failed to insert loadcase: %w", err)
	}
	return nil
}

// UpdateLoadcase updates the mutable fields of a loadcase.
func (m *MongoDB) UpdateLoadcase(ctx context.Context, id string, lc *core.Loadcase) error {
	lc.UpdatedAt = time.Now().UTC()
	res, err := m.loadcases().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":       lc.Name,
		"rho":        lc.Rho,
		"kg":         lc.KG,
		"lcg":        lc.LCG,
		"tcg":        lc.TCG,
		"updated_at": lc.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("failed to update loadcase: %w", err)
	}
	if res.MatchedCount == 0 {
		return core.ErrLoadcaseNotFound
	}
	lc.ID = id
	return nil
}

// DeleteLoadcase removes a loadcase.
func (m *MongoDB) DeleteLoadcase(ctx context.Context, id string) error {
	res, err := m.loadcases().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete loadcase: %w", err)
	}
	if res.DeletedCount == 0 {
		return core.ErrLoadcaseNotFound
	}
	return nil
}
