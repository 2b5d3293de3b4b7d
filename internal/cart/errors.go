package cart

import (
	"errors"
	"fmt"
	"net/http"
)

// NetworkError означает, что запрос не дошел до сервера или истек таймаут.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("cart %s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// RequestError означает, что сервер ответил статусом вне 2xx.
type RequestError struct {
	Op      string
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("cart %s: request failed with status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("cart %s: request failed with status %d: %s", e.Op, e.Status, e.Message)
}

// ValidationError означает, что запрос отклонен до отправки.
type ValidationError struct {
	Op  string
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("cart %s: invalid request: %v", e.Op, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsNotFound сообщает, что сервер не знает запрошенный ресурс (404).
func IsNotFound(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Status == http.StatusNotFound
}

// IsNetwork сообщает, что backend недоступен.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
