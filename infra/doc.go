// Package infra holds the adapters around the vessel core: configuration
// driven logging, metrics exporters, the MQTT status publisher, snapshot
// stores and Sentry monitoring. Adapters depend on core interfaces; core
// packages never import infra.
package infra
