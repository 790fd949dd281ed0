package models

import "time"

// Config represents the application configuration
type Config struct {
	Store     StoreConfig
	Directory DirectoryConfig
	// LimitsFile points at the optional YAML file with the branch's
	// quota limits and fees; defaults apply when it is absent.
	LimitsFile string
}

// StoreConfig holds the account store file settings
type StoreConfig struct {
	// Path of the multi-account JSON file. The backup used by the
	// save rollback protocol lives at Path + ".bkp".
	Path string
}

// DirectoryConfig holds directory database connection settings
type DirectoryConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}
