// Package generate drives the build-time code generation pass.
//
// A Generator takes parsed and validated manifest units plus a toggle
// configuration, resolves every switch through the engine, and writes
// the committed fragments to their target files under the output
// directory. Output is deterministic: units are processed in name
// order, switches in declaration order, and equal inputs yield
// byte-identical files.
//
// Each run is identified by a UUID stamped into the file headers and,
// when a report store is configured, recorded along with one decision
// per resolved switch.
package generate
