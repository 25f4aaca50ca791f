package config

import "time"

const defaultPort = 8080

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "sulytrack",
	Pass: "sulytrack",
	Name: "sulytrack",
}

var defaultKafka = Kafka{
	Topic:   "sulytrack.events",
	GroupID: "sulytrack-worker",
}

const defaultTokenTTL = 24 * time.Hour

// Sulaymaniyah city center.
var defaultMap = Map{
	CenterLat:     35.5642,
	CenterLng:     45.4333,
	DefaultZoom:   13,
	LocateTimeout: 5 * time.Second,
}

var defaultRateLimit = RateLimit{
	Enabled:    true,
	Rate:       1,
	Burst:      5,
	TTL:        10 * time.Minute,
	MaxBuckets: 10000,
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultKafka returns the default kafka topic and consumer group.
func DefaultKafka() Kafka {
	return defaultKafka
}

// DefaultMap returns the default live map settings.
func DefaultMap() Map {
	return defaultMap
}

// DefaultRateLimit returns the default limiter settings for auth endpoints.
func DefaultRateLimit() RateLimit {
	return defaultRateLimit
}
