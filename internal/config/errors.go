package config

import "errors"

var (
	// ErrInvalidConfig wraps every Validate failure and bad position labels in
	// quotas, starting_mins or sub_budget.
	ErrInvalidConfig = errors.New("invalid fplsquad config")
	// ErrLoadConfig wraps a config file that cannot be read or parsed, and env or
	// unmarshal failures.
	ErrLoadConfig = errors.New("load fplsquad config")
)
