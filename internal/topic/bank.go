// Package topic holds the role-indexed bank of candidate interview topics.
package topic

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Bank maps a role to its ordered list of candidate topics. The order is a
// deliberate priority ordering: fundamentals come before advanced material,
// and the selection policy slices from the front.
type Bank map[string][]string

// Default is the built-in topic bank.
var Default = Bank{
	"aiml": {
		"machine learning fundamentals",
		"model evaluation metrics",
		"overfitting and regularization",
		"neural networks and backpropagation",
		"real-world ML projects",
		"data preprocessing",
		"deployment and monitoring",
	},
	"software": {
		"object oriented programming",
		"data structures and algorithms",
		"REST APIs and backend design",
		"databases and SQL",
		"debugging and problem solving",
		"system design basics",
		"version control and collaboration",
	},
}

// Topics returns the bank entry for a role. Unknown roles have no topics.
func (b Bank) Topics(role string) []string {
	return b[role]
}

// LoadFile reads a bank from a YAML file shaped as role -> topic list.
func LoadFile(path string) (Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read topic bank: %w", err)
	}
	var bank Bank
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("failed to parse topic bank: %w", err)
	}
	return bank, nil
}

// Load returns the bank at path, or the built-in default when path is empty.
func Load(path string) (Bank, error) {
	if path == "" {
		return Default, nil
	}
	return LoadFile(path)
}
