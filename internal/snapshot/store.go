package snapshot

import (
	"context"
	"errors"
	"fmt"
)

const keyPrefix = "event-plan-"

var ErrNotFound = errors.New("snapshot not found")

// Store хранит сериализованные снапшоты по строковому ключу.
type Store interface {
	Put(ctx context.Context, key string, payload []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// LocalPersistenceError описывает сбой чтения или записи локального хранилища.
type LocalPersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *LocalPersistenceError) Error() string {
	return fmt.Sprintf("local persistence %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *LocalPersistenceError) Unwrap() error {
	return e.Err
}

// Key возвращает ключ хранилища для события.
func Key(eventID string) string {
	return keyPrefix + eventID
}
