// Package config loads runtime configuration for the EduXperience CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   backend base URL
//	-d string   local storage file, or "memory"
//	-k string   local storage passphrase
//	-t int      backend request timeout (seconds)
//	-i int      online status check interval (seconds)
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "storage_dsn": "/home/me/.config/eduxperience/client.db",
//	  "storage_passphrase": "",
//	  "request_timeout": "10s",
//	  "online_check_interval": "3s",
//	  "admin_username": "admin",
//	  "admin_password_hash": "$2a$10$..."
//	}
//
// Admin credentials are accepted from JSON only so they never appear in
// shell history or process listings.
package config
