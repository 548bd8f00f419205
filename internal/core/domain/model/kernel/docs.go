// Package kernel holds the value objects shared by every aggregate of the
// dispatch domain: identifiers, grid and GPS positions, addresses and money.
//
// All of them are immutable, are built through validating constructors and
// embed a guard.ConstructorGuard so that zero values are rejected by Validate.
package kernel
