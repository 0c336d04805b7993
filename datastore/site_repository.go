package datastore

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/aura-site/api/models"
)

type SiteRepository interface {
	Create(site models.Site, components []models.Component) (models.Site, []models.Component, error)
	GetByUsername(username string) (models.Site, error)
	GetByID(id int) (models.Site, error)
	Exists(username string) (bool, error)
	Recent(limit int) ([]models.Site, error)
	TopScores(limit int) ([]models.Site, error)
	Count() (int, error)
	GetByOffset(offset int) (models.Site, error)
	Delete(username string) error
}

type SiteDatabase struct {
	database *sql.DB
}

func NewSiteDatabase(db *sql.DB) (SiteDatabase, error) {
	var siteDB SiteDatabase
	siteDB.database = db
	return siteDB, nil
}

const siteColumns = `
	id,
	username,
	name,
	bio,
	pfp_url,
	banner_url,
	twitter_id,
	aura,
	global_variant,
	score,
	colors,
	pfp_colors,
	banner_colors,
	primary_color,
	secondary_color,
	background_color,
	closest_named_color,
	pfp_blurhash,
	banner_blurhash,
	created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSite(row rowScanner) (models.Site, error) {
	var site models.Site
	err := row.Scan(
		&site.ID,
		&site.Username,
		&site.Name,
		&site.Bio,
		&site.PfpURL,
		&site.BannerURL,
		&site.TwitterID,
		&site.Aura,
		&site.GlobalVariant,
		&site.Score,
		pq.Array(&site.Colors),
		pq.Array(&site.PfpColors),
		pq.Array(&site.BannerColors),
		&site.PrimaryColor,
		&site.SecondaryColor,
		&site.BackgroundColor,
		&site.ClosestNamedColor,
		&site.PfpBlurHash,
		&site.BannerBlurHash,
		&site.CreatedAt,
	)
	return site, err
}

// textArray never stores NULL for an empty palette.
func textArray(values []string) any {
	if values == nil {
		values = []string{}
	}
	return pq.Array(values)
}

// Create inserts a site and its components in one transaction. A taken
// username is a Conflict.
func (sdb SiteDatabase) Create(site models.Site, components []models.Component) (models.Site, []models.Component, error) {
	tx, err := sdb.database.Begin()
	if err != nil {
		return models.Site{}, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertErr := tx.QueryRow(`
		INSERT INTO sites (
			username,
			name,
			bio,
			pfp_url,
			banner_url,
			twitter_id,
			aura,
			global_variant,
			score,
			colors,
			pfp_colors,
			banner_colors,
			primary_color,
			secondary_color,
			background_color,
			closest_named_color,
			pfp_blurhash,
			banner_blurhash,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id`,
		site.Username,
		site.Name,
		site.Bio,
		site.PfpURL,
		site.BannerURL,
		site.TwitterID,
		site.Aura,
		site.GlobalVariant,
		site.Score,
		textArray(site.Colors),
		textArray(site.PfpColors),
		textArray(site.BannerColors),
		site.PrimaryColor,
		site.SecondaryColor,
		site.BackgroundColor,
		site.ClosestNamedColor,
		site.PfpBlurHash,
		site.BannerBlurHash,
		site.CreatedAt,
	).Scan(&site.ID)
	if insertErr != nil {
		return models.Site{}, nil, conflictError(insertErr, "site already exists")
	}

	stored := make([]models.Component, 0, len(components))
	for _, c := range components {
		c.SiteID = site.ID
		voting, err := votingValue(c.Voting)
		if err != nil {
			return models.Site{}, nil, err
		}

		scanErr := tx.QueryRow(`
			INSERT INTO components (site_id, component_type, content, voting, variant, position)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at`,
			c.SiteID,
			c.Type,
			string(c.Content),
			voting,
			c.Variant,
			c.Position,
		).Scan(&c.ID, &c.CreatedAt)
		if scanErr != nil {
			return models.Site{}, nil, fmt.Errorf("failed to create %s component: %w", c.Type, scanErr)
		}
		stored = append(stored, c)
	}

	if err := tx.Commit(); err != nil {
		return models.Site{}, nil, fmt.Errorf("failed to commit site: %w", err)
	}

	return site, stored, nil
}

func votingValue(votes []int) (sql.NullString, error) {
	if votes == nil {
		return sql.NullString{}, nil
	}
	encoded, err := json.Marshal(votes)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode votes: %w", err)
	}
	return sql.NullString{String: string(encoded), Valid: true}, nil
}

func (sdb SiteDatabase) GetByUsername(username string) (models.Site, error) {
	row := sdb.database.QueryRow(`SELECT `+siteColumns+` FROM sites WHERE username = $1`, username)

	site, err := scanSite(row)
	if err != nil {
		return models.Site{}, scanError(err)
	}
	return site, nil
}

func (sdb SiteDatabase) GetByID(id int) (models.Site, error) {
	row := sdb.database.QueryRow(`SELECT `+siteColumns+` FROM sites WHERE id = $1`, id)

	site, err := scanSite(row)
	if err != nil {
		return models.Site{}, scanError(err)
	}
	return site, nil
}

func (sdb SiteDatabase) Exists(username string) (bool, error) {
	var exists bool
	err := sdb.database.QueryRow(`SELECT EXISTS(SELECT 1 FROM sites WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}

// Recent returns the newest sites first
func (sdb SiteDatabase) Recent(limit int) ([]models.Site, error) {
	return sdb.list(`SELECT `+siteColumns+` FROM sites ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
}

// TopScores returns sites by harmony score, oldest first among equals
func (sdb SiteDatabase) TopScores(limit int) ([]models.Site, error) {
	return sdb.list(`SELECT `+siteColumns+` FROM sites ORDER BY score DESC, id ASC LIMIT $1`, limit)
}

func (sdb SiteDatabase) list(query string, args ...any) ([]models.Site, error) {
	rows, err := sdb.database.Query(query, args...)
	if err != nil {
		return []models.Site{}, err
	}
	defer rows.Close()

	sites := []models.Site{}
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return []models.Site{}, err
		}
		sites = append(sites, site)
	}

	if err = rows.Err(); err != nil {
		return []models.Site{}, err
	}
	return sites, nil
}

func (sdb SiteDatabase) Count() (int, error) {
	var count int
	err := sdb.database.QueryRow(`SELECT COUNT(*) FROM sites`).Scan(&count)
	return count, err
}

// GetByOffset returns the site at position offset when ordered by id
func (sdb SiteDatabase) GetByOffset(offset int) (models.Site, error) {
	row := sdb.database.QueryRow(`SELECT `+siteColumns+` FROM sites ORDER BY id ASC OFFSET $1 LIMIT 1`, offset)

	site, err := scanSite(row)
	if err != nil {
		return models.Site{}, scanError(err)
	}
	return site, nil
}

// Delete removes a site; its components and featured days cascade
func (sdb SiteDatabase) Delete(username string) error {
	result, err := sdb.database.Exec(`DELETE FROM sites WHERE username = $1`, username)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return NoRowsError{true, sql.ErrNoRows}
	}
	return nil
}
