// Package config loads the streetpulse configuration.
//
// # Configuration Sources
//
// Values are applied in the following order, later sources winning:
//
//  1. Default()
//  2. A YAML file (STREETPULSE_CONFIG_FILE, config.yaml or configs/config.yaml)
//  3. Environment variables, including those read from a .env file
//
// # Environment Variables
//
// Variables are namespaced with STREETPULSE_ and the section name:
//
//	STREETPULSE_SERVER_PORT=8050
//	STREETPULSE_DATASET_SOURCE_PATH=data/bahnhofstrasse.csv
//	STREETPULSE_DATASET_LAST_YEAR_START=2022
//	STREETPULSE_LOGGING_LEVEL=debug
//	STREETPULSE_CACHE_TTL=5m
//
// # Validation
//
// Every section carries go-playground/validator tags and Load fails with the
// validator's field errors when a value is out of range.
package config
