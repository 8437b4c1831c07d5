package data

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed categories.json
var categoriesJSON []byte

// Categories returns the category names seeded on startup
func Categories() ([]string, error) {
	var names []string
	if err := json.Unmarshal(categoriesJSON, &names); err != nil {
		return nil, fmt.Errorf("decode embedded categories: %w", err)
	}
	return names, nil
}
