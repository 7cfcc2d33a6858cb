package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidNotification is returned when a notification does not have the expected shape.
var ErrInvalidNotification = errors.New("invalid notification")

// SlotNotification is pushed when the node processes a slot.
type SlotNotification struct {
	Parent uint64 `json:"parent"`
	Root   uint64 `json:"root"`
	Slot   uint64 `json:"slot"`
}

// DecodeSlotNotification decodes the result of a slot notification. All fields are required.
func DecodeSlotNotification(data []byte) (SlotNotification, error) {
	raw := struct {
		Parent *uint64 `json:"parent"`
		Root   *uint64 `json:"root"`
		Slot   *uint64 `json:"slot"`
	}{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return SlotNotification{}, fmt.Errorf("%w: %s", ErrInvalidNotification, err.Error())
	}
	fields := []struct {
		name  string
		value *uint64
	}{
		{"parent", raw.Parent},
		{"root", raw.Root},
		{"slot", raw.Slot},
	}
	for _, field := range fields {
		if field.value == nil {
			return SlotNotification{}, fmt.Errorf("%w: slot notification is missing %s", ErrInvalidNotification, field.name)
		}
	}
	return SlotNotification{
		Parent: *raw.Parent,
		Root:   *raw.Root,
		Slot:   *raw.Slot,
	}, nil
}
