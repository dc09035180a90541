package protocol

import (
	"encoding/json"
	"fmt"
)

// Encode marshals a message into its wire envelope: a flat JSON object with
// the payload fields beside the "type" tag.
func Encode(m Message) ([]byte, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Type(), err)
	}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Type(), err)
	}
	fields["type"] = m.Type()
	return json.Marshal(fields)
}

// Decode parses a wire envelope into its typed message. An unknown or
// missing type tag and malformed payloads are protocol errors.
func Decode(data []byte) (Message, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	var (
		msg Message
		err error
	)
	switch env.Type {
	case TypePlayerAssigned:
		var m PlayerAssigned
		err = json.Unmarshal(data, &m)
		msg = m
	case TypeStartGame:
		var m StartGame
		err = json.Unmarshal(data, &m)
		msg = m
	case TypeNextTurn:
		var m NextTurn
		err = json.Unmarshal(data, &m)
		msg = m
	case TypeAction:
		var m Action
		err = json.Unmarshal(data, &m)
		msg = m
	case TypeInvalidOperation:
		var m InvalidOperation
		err = json.Unmarshal(data, &m)
		msg = m
	case TypeEndGame:
		var m EndGame
		err = json.Unmarshal(data, &m)
		msg = m
	default:
		return nil, fmt.Errorf("unknown message type %q", env.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	return msg, nil
}
