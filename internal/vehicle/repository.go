package vehicle

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists vehicle listings and their image attachments.
type Repository interface {
	Create(ctx context.Context, v Vehicle) error
	Get(ctx context.Context, id string) (Vehicle, error)
	List(ctx context.Context, onlyAvailable bool) ([]Vehicle, error)
	Delete(ctx context.Context, id string) error
	AttachImage(ctx context.Context, img Image) error
}

// PostgresRepository stores vehicles in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a vehicle listing.
func (r *PostgresRepository) Create(ctx context.Context, v Vehicle) error {
	id, err := uuid.Parse(v.ID)
	if err != nil {
		return err
	}
	ownerID, err := uuid.Parse(v.OwnerID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO vehicles (id, owner_id, model, location, daily_rate, status, available, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, ownerID, v.Model, v.Location, v.DailyRate, v.Status, v.Available, v.CreatedAt.UTC())
	return err
}

// Get fetches a vehicle with its images.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Vehicle, error) {
	vid, err := uuid.Parse(id)
	if err != nil {
		return Vehicle{}, err
	}
	row := r.db.QueryRow(ctx, `SELECT id, owner_id, model, location, daily_rate, status, available, created_at
        FROM vehicles WHERE id = $1`, vid)
	v, err := scanVehicle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Vehicle{}, ErrNotFound
		}
		return Vehicle{}, err
	}
	images, err := r.imagesFor(ctx, vid)
	if err != nil {
		return Vehicle{}, err
	}
	v.Images = images
	return v, nil
}

// List returns vehicles with their images, optionally only bookable ones.
func (r *PostgresRepository) List(ctx context.Context, onlyAvailable bool) ([]Vehicle, error) {
	query := `SELECT id, owner_id, model, location, daily_rate, status, available, created_at
        FROM vehicles`
	if onlyAvailable {
		query += ` WHERE available`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range vehicles {
		vid, _ := uuid.Parse(vehicles[i].ID)
		images, err := r.imagesFor(ctx, vid)
		if err != nil {
			return nil, err
		}
		vehicles[i].Images = images
	}
	return vehicles, nil
}

// Delete removes a vehicle; vehicle_images rows cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	vid, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM vehicles WHERE id = $1`, vid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AttachImage stores a base64-encoded photo for a vehicle.
func (r *PostgresRepository) AttachImage(ctx context.Context, img Image) error {
	id, err := uuid.Parse(img.ID)
	if err != nil {
		return err
	}
	vid, err := uuid.Parse(img.VehicleID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO vehicle_images (id, vehicle_id, encoded_image, created_at)
        VALUES ($1, $2, $3, $4)`, id, vid, img.EncodedImage, img.CreatedAt.UTC())
	return err
}

func (r *PostgresRepository) imagesFor(ctx context.Context, vehicleID uuid.UUID) ([]Image, error) {
	rows, err := r.db.Query(ctx, `SELECT id, vehicle_id, encoded_image, created_at
        FROM vehicle_images WHERE vehicle_id = $1 ORDER BY created_at`, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		var (
			id, vid   uuid.UUID
			img       Image
			createdAt time.Time
		)
		if err := rows.Scan(&id, &vid, &img.EncodedImage, &createdAt); err != nil {
			return nil, err
		}
		img.ID = id.String()
		img.VehicleID = vid.String()
		img.CreatedAt = createdAt.UTC()
		images = append(images, img)
	}
	return images, rows.Err()
}

func scanVehicle(row pgx.Row) (Vehicle, error) {
	var (
		id, ownerID uuid.UUID
		v           Vehicle
		createdAt   time.Time
	)
	if err := row.Scan(&id, &ownerID, &v.Model, &v.Location, &v.DailyRate, &v.Status, &v.Available, &createdAt); err != nil {
		return Vehicle{}, err
	}
	v.ID = id.String()
	v.OwnerID = ownerID.String()
	v.CreatedAt = createdAt.UTC()
	return v, nil
}
