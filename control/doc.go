// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, hot reload, metrics registry and debug introspection for
// the query bridge.
//
//   - Config is loaded through viper from flags, HIOLOAD_MPT_* variables and
//     an optional file.
//   - Watcher re-reads the file on change and dispatches reload hooks.
//   - MetricsRegistry wraps a prometheus registry with a flat snapshot.
//   - DebugProbes evaluates named state probes.
package control
