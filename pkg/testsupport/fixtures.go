// Package testsupport loads test fixtures and golden files.
package testsupport

import (
	"encoding/json"
	"os"
)

// LoadFixture returns the raw bytes stored at path.
func LoadFixture(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// LoadGolden decodes the JSON document stored at path into v.
func LoadGolden(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// JoinCase is one entry of a join golden file.
type JoinCase struct {
	Name  string `json:"name"`
	Input string `json:"input"`
	Want  string `json:"want"`
}

// LoadJoinCases decodes a golden file holding a list of JoinCase entries.
func LoadJoinCases(path string) ([]JoinCase, error) {
	var cases []JoinCase
	if err := LoadGolden(path, &cases); err != nil {
		return nil, err
	}
	return cases, nil
}
