// Package retention enforces history retention on an execution store.
//
// The Pruner deletes records past a configured age or beyond a configured
// count cap, optionally archiving them to JSON files first. The Scheduler
// runs the pruner on a cron expression (standard five-field syntax), so a
// long-lived process can keep its history bounded without external cron
// jobs.
package retention
