package domain

import "time"

// Default synchronization values
const (
	DefaultPollInterval       = 10 * time.Second
	DefaultFetchTimeout       = 10 * time.Second
	DefaultActionTimeout      = 10 * time.Second
	DefaultNotificationsLimit = 50
	DefaultJournalListLimit   = 50
	MaxJournalListLimit       = 500
)

