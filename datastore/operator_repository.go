package datastore

import (
	"database/sql"
	"fmt"

	domainerrors "github.com/aura-site/api/errors"
	"github.com/aura-site/api/models"
)

type OperatorRepository interface {
	Create(operator models.Operator) (models.Operator, error)
	GetByEmail(email string) (models.Operator, error)
	ValidateAndGet(credentials models.Credentials) (models.Operator, error)
}

type OperatorDatabase struct {
	database *sql.DB
}

func NewOperatorDatabase(db *sql.DB) (OperatorDatabase, error) {
	var operatorDB OperatorDatabase
	operatorDB.database = db
	return operatorDB, nil
}

// Create inserts an operator. A taken email is a Conflict.
func (odb OperatorDatabase) Create(operator models.Operator) (models.Operator, error) {
	db := odb.database

	_, insertErr := db.Exec(`
		INSERT INTO operators (
			operator_id,
			email,
			password_hash,
			created_at
		) VALUES ($1, $2, $3, $4)`,
		operator.OperatorID,
		operator.Email,
		operator.HashedPassword,
		operator.CreatedAt,
	)
	if insertErr != nil {
		return models.Operator{}, conflictError(insertErr, "operator already exists")
	}

	return operator, nil
}

func (odb OperatorDatabase) GetByEmail(email string) (models.Operator, error) {
	db := odb.database

	sqlStatement := `
		SELECT operator_id, email, password_hash, created_at
		FROM operators
		WHERE email = $1`

	var operator models.Operator
	scanErr := db.QueryRow(sqlStatement, email).Scan(
		&operator.OperatorID,
		&operator.Email,
		&operator.HashedPassword,
		&operator.CreatedAt,
	)
	if scanErr != nil {
		return models.Operator{}, scanError(scanErr)
	}

	return operator, nil
}

// ValidateAndGet returns the operator matching the credentials. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (odb OperatorDatabase) ValidateAndGet(credentials models.Credentials) (models.Operator, error) {
	operator, err := odb.GetByEmail(credentials.Email)
	if err != nil {
		if IsNoRows(err) {
			return models.Operator{}, domainerrors.Unauthorized("invalid email or password")
		}
		return models.Operator{}, fmt.Errorf("error in row scan %v", err)
	}

	if !operator.CheckPassword(credentials.Password) {
		return models.Operator{}, domainerrors.Unauthorized("invalid email or password")
	}
	return operator, nil
}
