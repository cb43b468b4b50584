package domain

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrRateLimited           = errors.New("rate limited")
	ErrNoResults             = errors.New("no results")
	ErrProviderNotConfigured = errors.New("search provider api key not configured")
)
