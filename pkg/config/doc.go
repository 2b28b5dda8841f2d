// Package config loads typed configuration structs from environment
// variables, with optional .env file support for local development.
//
// Every component defines its own Config struct with `env` tags and loads it
// independently, so the service wires exactly the configuration it uses.
package config
