package redis

import "github.com/redis/rueidis"

// NewStoreForTest wraps an existing (mock) client in a Store.
func NewStoreForTest(c rueidis.Client) *Store {
	return &Store{client: c}
}
