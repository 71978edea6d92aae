// Package redis connects to a Redis server with startup retry and exposes
// a healthcheck probe. The service uses Redis as an optional second cache
// tier; the client type is go-redis's UniversalClient-compatible *Client.
package redis
