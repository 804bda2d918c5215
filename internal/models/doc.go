// Package models lists the chat models the configured translation provider
// offers, so users can pick a value for translation.model.
package models
