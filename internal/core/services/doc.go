// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go and depend only on port interfaces, so every
// store, extractor and engine can be swapped for a test double.
package services
