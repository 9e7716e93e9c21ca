package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrEmptyJWTSecret error if config auth.jwt.secret is empty.
	ErrEmptyJWTSecret = errors.New("toml config auth.jwt.secret can not be empty")

	// ErrEmptyPeopleBranch error if config auth.directory.peoplebranch is empty.
	ErrEmptyPeopleBranch = errors.New("toml config auth.directory.peoplebranch can not be empty")
)
