// Package producers contains the built-in charging.Producer
// implementations: a heat-limited nuclear reactor drawing on module
// batteries, ambient solar and thermal chargers, and a bio-reactor burning
// organic material.
package producers
