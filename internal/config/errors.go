package config

import "errors"

// ErrInvalidConfig marks a value the service cannot start with.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrLoadConfig marks a failure reading the YAML file or the environment.
var ErrLoadConfig = errors.New("configuration load failed")
