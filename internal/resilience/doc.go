// Package resilience provides reliability and fault tolerance patterns for the application.
// It includes circuit breaker implementations for protecting feed fetches, headless
// rendering, and database calls from cascading failures.
//
// The package supports:
//   - Circuit breakers for RSS feed fetching and headless-browser rendering
//   - A database-call circuit breaker wrapping *sql.DB
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.FeedFetchConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return fetchFeed(url)
//	})
package resilience
