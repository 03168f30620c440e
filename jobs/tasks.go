package jobs

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRefdataWarm repopulates the reference-data cache from Postgres.
	TaskRefdataWarm = "refdata:warm"
	// TaskCacheBump invalidates cached reference data after an upstream load.
	TaskCacheBump = "cache:bump"
)
