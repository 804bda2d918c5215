// Package cli provides command-line interface setup and configuration
// for the rsstranslator application. It handles flag parsing, command
// creation, credential lookup and configuration management using cobra
// and viper.
package cli
