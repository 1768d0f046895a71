package config

import "time"

type RatingsConfig struct {
	// OnePerPair allows at most one rating per (rater, ratee).
	OnePerPair          bool `yaml:"one_per_pair"`
	CommentMaxLength    int  `yaml:"comment_max_length"`
	RequireVerified     bool `yaml:"require_verified"`
	AggregateMaxRetries int  `yaml:"aggregate_max_retries"`
}

type WorkerConfig struct {
	StaleQueueInterval  time.Duration `yaml:"stale_queue_interval"`
	StaleQueueBatchSize int           `yaml:"stale_queue_batch_size"`
}

func loadRatingsConfig() *RatingsConfig {
	return &RatingsConfig{
		OnePerPair:          getEnvAsBool("RATINGS_ONE_PER_PAIR", true),
		CommentMaxLength:    getEnvAsInt("RATING_COMMENT_MAX_LENGTH", 1000),
		RequireVerified:     getEnvAsBool("RATINGS_REQUIRE_VERIFIED", true),
		AggregateMaxRetries: getEnvAsInt("RATING_AGGREGATE_MAX_RETRIES", 5),
	}
}

func loadWorkerConfig() *WorkerConfig {
	return &WorkerConfig{
		StaleQueueInterval:  getEnvAsDuration("STALE_QUEUE_INTERVAL", 30*time.Second),
		StaleQueueBatchSize: getEnvAsInt("STALE_QUEUE_BATCH_SIZE", 50),
	}
}
