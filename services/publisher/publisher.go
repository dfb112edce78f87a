package publisher

// Publisher represents a service for publishing listing events.
// Every upserted listing is announced so downstream consumers (site
// cache invalidation, alerting) can react without polling the store.
type Publisher interface {
	// Publish publishes a message to a stream under the source key
	Publish(source string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}
