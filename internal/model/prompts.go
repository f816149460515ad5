package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PromptList is an ordered list of prompts. It is stored as a JSON array in a
// nullable text column; a nil list maps to NULL.
type PromptList []string

func (p PromptList) Value() (driver.Value, error) {
	encoded, err := EncodePrompts(p)
	if err != nil {
		return nil, err
	}
	if encoded == nil {
		return nil, nil
	}
	return *encoded, nil
}

func (p *PromptList) Scan(src any) error {
	var raw *string
	switch v := src.(type) {
	case nil:
	case string:
		raw = &v
	case []byte:
		s := string(v)
		raw = &s
	default:
		return fmt.Errorf("scan prompts: unsupported type %T", src)
	}

	decoded, err := DecodePrompts(raw)
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}

// EncodePrompts renders prompts in their stored form. Nil stays nil, an empty
// list becomes "[]".
func EncodePrompts(prompts []string) (*string, error) {
	if prompts == nil {
		return nil, nil
	}
	payload, err := json.Marshal(prompts)
	if err != nil {
		return nil, fmt.Errorf("encode prompts failed: %w", err)
	}
	encoded := string(payload)
	return &encoded, nil
}

func DecodePrompts(raw *string) ([]string, error) {
	if raw == nil {
		return nil, nil
	}
	var prompts []string
	if err := json.Unmarshal([]byte(*raw), &prompts); err != nil {
		return nil, fmt.Errorf("decode prompts failed: %w", err)
	}
	if prompts == nil {
		prompts = []string{}
	}
	return prompts, nil
}
