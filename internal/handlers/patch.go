package handlers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// patchBody keeps the raw fields of a PATCH request so that an absent field
// can be told apart from an explicit null.
type patchBody map[string]json.RawMessage

func bindPatch(c *gin.Context) (patchBody, error) {
	var body patchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, err
	}
	return body, nil
}

// field decodes key into a T. present reports whether the key was sent;
// a null value yields present with a nil value.
func field[T any](body patchBody, key string) (value *T, present bool, err error) {
	raw, ok := body[key]
	if !ok {
		return nil, false, nil
	}
	if string(raw) == "null" {
		return nil, true, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, true, fmt.Errorf("invalid value for %s", key)
	}
	return &v, true, nil
}

// optionalTime decodes a nullable timestamp: clear is true for an explicit null.
func optionalTime(body patchBody, key string) (value *time.Time, clear bool, err error) {
	value, present, err := field[time.Time](body, key)
	if err != nil {
		return nil, false, err
	}
	return value, present && value == nil, nil
}
