// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services depend only on domain and the port interfaces, plus gocron and
// golang.org/x/sync for scheduling and fetch coordination.
package services
