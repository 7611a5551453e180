package common

const (
	RedisStreamScrapeTask = "twse.scrape.task"

	RedisStreamGroup    = "scrape-executor-group"
	RedisStreamConsumer = "scrape-executor-consumer"

	StorageDriverPostgres = "postgres"
	StorageDriverMongo    = "mongo"
)
