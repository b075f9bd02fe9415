package req

import (
	"encoding/json"
	"errors"
	"io"
)

// Decode Разбирает JSON тела запроса в T. Неизвестные поля - ошибка.
func Decode[T any](body io.Reader) (T, error) {
	var payload T
	if body == nil {
		return payload, errors.New("empty body")
	}
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return payload, err
	}
	return payload, nil
}
