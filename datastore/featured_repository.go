package datastore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/aura-site/api/models"
)

type FeaturedRepository interface {
	Create(featured models.FeaturedSite) (models.FeaturedSite, error)
	GetByDate(date time.Time) (models.FeaturedSite, error)
	GetToday() (models.FeaturedSite, error)
	GetAll() ([]models.FeaturedSite, error)
}

type FeaturedDatabase struct {
	database *sql.DB
}

func NewFeaturedDatabase(db *sql.DB) (FeaturedDatabase, error) {
	var featuredDB FeaturedDatabase
	featuredDB.database = db
	return featuredDB, nil
}

// DayOf truncates t to midnight UTC, the key featured sites are stored under.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Create stores the featured site of a day. A second pick for the same day is
// a Conflict.
func (fdb FeaturedDatabase) Create(featured models.FeaturedSite) (models.FeaturedSite, error) {
	db := fdb.database

	sqlStatement := `
		INSERT INTO featured_sites (date, site_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := db.QueryRow(
		sqlStatement,
		DayOf(featured.Date),
		featured.SiteID,
		featured.CreatedAt,
	).Scan(&featured.ID)

	if err != nil {
		return models.FeaturedSite{}, conflictError(fmt.Errorf("failed to create featured site: %w", err), "featured site already chosen")
	}

	featured.Date = DayOf(featured.Date)
	return featured, nil
}

// GetByDate retrieves the featured site of the day containing date
func (fdb FeaturedDatabase) GetByDate(date time.Time) (models.FeaturedSite, error) {
	db := fdb.database

	sqlStatement := `
		SELECT id, date, site_id, created_at
		FROM featured_sites
		WHERE date = $1`

	var featured models.FeaturedSite
	err := db.QueryRow(sqlStatement, DayOf(date)).Scan(
		&featured.ID,
		&featured.Date,
		&featured.SiteID,
		&featured.CreatedAt,
	)
	if err != nil {
		return models.FeaturedSite{}, scanError(err)
	}

	return featured, nil
}

// GetToday retrieves today's featured site
func (fdb FeaturedDatabase) GetToday() (models.FeaturedSite, error) {
	return fdb.GetByDate(time.Now())
}

// GetAll retrieves every featured site, newest first
func (fdb FeaturedDatabase) GetAll() ([]models.FeaturedSite, error) {
	db := fdb.database

	sqlStatement := `
		SELECT id, date, site_id, created_at
		FROM featured_sites
		ORDER BY date DESC`

	rows, err := db.Query(sqlStatement)
	if err != nil {
		return []models.FeaturedSite{}, err
	}
	defer rows.Close()

	featured := []models.FeaturedSite{}
	for rows.Next() {
		var fs models.FeaturedSite
		err := rows.Scan(
			&fs.ID,
			&fs.Date,
			&fs.SiteID,
			&fs.CreatedAt,
		)
		if err != nil {
			return []models.FeaturedSite{}, err
		}
		featured = append(featured, fs)
	}

	if err = rows.Err(); err != nil {
		return []models.FeaturedSite{}, err
	}

	return featured, nil
}
