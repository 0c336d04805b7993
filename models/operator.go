package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=1024"`
}

// Operator is an account allowed to moderate sites.
type Operator struct {
	OperatorID     string    `json:"operatorId" db:"operator_id"`
	Email          string    `json:"email" db:"email"`
	HashedPassword string    `json:"-" db:"password_hash"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

func NewOperator(email, password string) (Operator, error) {
	hashedPassword, hashErr := GenerateHash(password)
	if hashErr != nil {
		return Operator{}, hashErr
	}
	return Operator{
		OperatorID:     uuid.New().String(),
		Email:          email,
		HashedPassword: hashedPassword,
		CreatedAt:      time.Now(),
	}, nil
}

func GenerateHash(password string) (string, error) {
	hashedPassword, hashErr := bcrypt.GenerateFromPassword([]byte(password), 8)
	if hashErr != nil {
		return "", fmt.Errorf("error hashing password %v", hashErr)
	}
	return string(hashedPassword), nil
}

// CheckPassword reports whether password matches the stored hash.
func (op Operator) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(op.HashedPassword), []byte(password)) == nil
}
