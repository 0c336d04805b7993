package datastore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	domainerrors "github.com/aura-site/api/errors"
	"github.com/aura-site/api/models"
)

type ComponentRepository interface {
	ListBySite(siteID int) ([]models.Component, error)
	Get(id int) (models.Component, error)
	CastVote(id int, option int) ([]int, error)
	Votes(id int) (models.VoteTally, error)
}

type ComponentDatabase struct {
	database *sql.DB
}

func NewComponentDatabase(db *sql.DB) (ComponentDatabase, error) {
	var componentDB ComponentDatabase
	componentDB.database = db
	return componentDB, nil
}

const componentColumns = `id, site_id, component_type, content, voting, variant, position, created_at`

func scanComponent(row rowScanner) (models.Component, error) {
	var (
		c       models.Component
		content []byte
		voting  []byte
	)
	err := row.Scan(
		&c.ID,
		&c.SiteID,
		&c.Type,
		&content,
		&voting,
		&c.Variant,
		&c.Position,
		&c.CreatedAt,
	)
	if err != nil {
		return models.Component{}, err
	}

	c.Content = json.RawMessage(content)
	if voting != nil {
		if err := json.Unmarshal(voting, &c.Voting); err != nil {
			return models.Component{}, fmt.Errorf("component %d has malformed votes: %w", c.ID, err)
		}
	}
	return c, nil
}

// ListBySite returns the components of a site in stored order
func (cdb ComponentDatabase) ListBySite(siteID int) ([]models.Component, error) {
	rows, err := cdb.database.Query(
		`SELECT `+componentColumns+` FROM components WHERE site_id = $1 ORDER BY position ASC, id ASC`,
		siteID,
	)
	if err != nil {
		return []models.Component{}, err
	}
	defer rows.Close()

	components := []models.Component{}
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return []models.Component{}, err
		}
		components = append(components, c)
	}

	if err = rows.Err(); err != nil {
		return []models.Component{}, err
	}
	return components, nil
}

func (cdb ComponentDatabase) Get(id int) (models.Component, error) {
	row := cdb.database.QueryRow(`SELECT `+componentColumns+` FROM components WHERE id = $1`, id)

	c, err := scanComponent(row)
	if err != nil {
		return models.Component{}, scanError(err)
	}
	return c, nil
}

// CastVote increments one option of a voting component in place and returns
// the updated counts. The increment is a single statement so concurrent votes
// never overwrite each other.
func (cdb ComponentDatabase) CastVote(id int, option int) ([]int, error) {
	var updated []byte
	err := cdb.database.QueryRow(`
		UPDATE components
		SET voting = jsonb_set(voting, ARRAY[$2::text], to_jsonb(COALESCE((voting->>($3::int))::int, 0) + 1))
		WHERE id = $1
			AND component_type = 'voting'
			AND voting IS NOT NULL
			AND $3::int >= 0
			AND $3::int < jsonb_array_length(voting)
		RETURNING voting`,
		id,
		strconv.Itoa(option),
		option,
	).Scan(&updated)

	if err == sql.ErrNoRows {
		return nil, cdb.voteRejected(id, option)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to cast vote: %w", err)
	}

	var votes []int
	if err := json.Unmarshal(updated, &votes); err != nil {
		return nil, fmt.Errorf("failed to decode votes: %w", err)
	}
	return votes, nil
}

// voteRejected explains why CastVote matched no row.
func (cdb ComponentDatabase) voteRejected(id int, option int) error {
	c, err := cdb.Get(id)
	if err != nil {
		return err
	}
	if c.Type != models.BlockVoting {
		return domainerrors.NotFoundf("component %d is not a poll", id)
	}
	return domainerrors.ValidationWithDetails("option out of range", map[string]string{
		"option": fmt.Sprintf("must be between 0 and %d", len(c.Voting)-1),
	})
}

// Votes returns the tally of a voting component
func (cdb ComponentDatabase) Votes(id int) (models.VoteTally, error) {
	c, err := cdb.Get(id)
	if err != nil {
		return models.VoteTally{}, err
	}
	if c.Type != models.BlockVoting {
		return models.VoteTally{}, domainerrors.NotFoundf("component %d is not a poll", id)
	}
	return models.NewVoteTally(c), nil
}
