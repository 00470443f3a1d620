package db

import (
	"errors"
	"fmt"
)

var ErrSettingNotFound = errors.New("setting not found")

type OperatorExistsError struct {
	Username string
}

func (e *OperatorExistsError) Error() string {
	return fmt.Sprintf("Operator %s exists", e.Username)
}

type OperatorNotFoundError struct {
	Username string
}

func (e *OperatorNotFoundError) Error() string {
	return fmt.Sprintf("Operator %s not found", e.Username)
}
