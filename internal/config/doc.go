// Package config loads the service configuration.
//
// Sources, lowest precedence first:
//
//	1. Built-in defaults (Default)
//	2. A YAML file: DATACLEANR_CONFIG_FILE, else config.yaml or configs/config.yaml
//	3. A .env file in the working directory, when present
//	4. Environment variables prefixed with DATACLEANR_
//
// Environment variables follow the struct layout, for example:
//
//	DATACLEANR_SERVER_PORT=8000
//	DATACLEANR_SERVER_MAX_UPLOAD_BYTES=52428800
//	DATACLEANR_STORAGE_BACKEND=sqlite
//	DATACLEANR_STORAGE_DSN=file:sessions.db
//	DATACLEANR_STORAGE_SESSION_TTL=24h
//	DATACLEANR_LOGGING_LEVEL=debug
//	DATACLEANR_RULES_FILE=rules.yaml
//
// Load validates the result before returning it.
package config
