// Package rate keeps the versioned tariff used to price new shipments.
package rate
