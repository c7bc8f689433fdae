// Package vpn provides WireGuard connection management for WireGuard GUI.
//
// This package implements the core functionality including:
//
//   - Profile management: one configuration file per profile in a profiles directory
//   - Connection management: switching the active profile through an external toggle command
//   - Startup reconciliation: merging the persisted marker with the observed link state
//   - Import and export: bulk ingestion and copying of profile files
//
// # Architecture
//
// The package is organized around a few types:
//
//   - ProfileStore: CRUD over the profiles directory, plus import, export and watching
//   - Marker: the durable pointer to the active profile
//   - ScriptExecutor: runs the toggle command for a profile and classifies its exit
//   - Reconciler: produces the initial State at process start
//   - Manager: the serialized state machine behind connect, disconnect, update and delete
//
// # Connection Flow
//
// A connect to profile B while A is active:
//
//  1. Toggle A (tear down). Failure aborts with the state unchanged.
//  2. Toggle B (bring up). Failure leaves no active profile.
//  3. Write B to the marker file.
//  4. Wait the settle delay.
//  5. Refresh the public IP (failures are recorded as unknown).
//  6. Publish Connected(B) and update the tray indicator.
//
// # Thread Safety
//
// Manager serializes every transition behind one mutex that is held for the
// whole transition, including the external command and the settle delay.
// State snapshots are guarded separately so queries never wait on a
// transition in flight. ProfileStore operations that do not touch the
// connection state run without the transition lock.
package vpn
