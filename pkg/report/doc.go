// Package report records what each generation run decided and why.
//
// Every run produces a RunRecord plus one Decision per resolved switch,
// so a build that shipped a particular fragment can later be traced
// back to the arm and condition that selected it. Records are persisted
// through the Storage interface; the storage subpackage provides SQLite
// and in-memory backends, retention prunes old runs on a cron schedule,
// and export serializes reports for external tooling.
//
// The oracle fingerprint ties a run to its toggle state: two runs with
// equal fingerprints and equal manifests are guaranteed to have made
// identical decisions.
package report
