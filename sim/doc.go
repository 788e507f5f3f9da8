// Package sim provides the discrete-event simulation engine for gridsim.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - component.go: Component lifecycle (up → down → under repair → up)
//   - event.go: Event kinds, their ordering, and the EventQueue
//   - simulator.go: The event loop that ties predicate, dispatcher and metrics together
//
// # Architecture
//
// One Simulator executes one bounded-horizon run over an m×n grid and returns a
// Result with five metrics: downtime ratio, time to first failure, mean time
// between failures, repair cost and maintenance cost. Cross-run statistics live
// in sub-packages:
//   - sim/sweep/: parallel Monte-Carlo replications and parameter sweeps
//   - sim/scenario/: YAML scenario files expanded into sweep points
//   - sim/trace/: repair decision and system state recording
//   - sim/artifact/: report upload (local directory or MinIO)
//   - sim/observability/: OpenTelemetry spans around sweeps
//
// # Key Interfaces
//
// The extension points are small interfaces selected once, from Config, when a
// Simulator is built:
//   - ClockSource: exponential dwell-time draws (seeded per run)
//   - FailurePredicate: block (r×s, bounded or toroidal) or clique (adjacency) criterion
//   - RepairDispatcher: immediate, naive, smart or batch repair policy
package sim
