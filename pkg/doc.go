// Package pkg provides the core libraries for netdiag, which turns a network
// lab spreadsheet into a topology document and a diagram.
//
// # Architecture
//
// Data flows through the packages in one direction:
//
//	delimited table
//	      ↓
//	 [table]      read rows, canonicalize column names
//	      ↓
//	 [topology]   resolve devices, attach interfaces, aggregate networks
//	      ↓
//	 [io]         YAML / JSON topology document
//	 [render]     Graphviz or D2 diagram (PNG, SVG, PDF, DOT, D2)
//
// [pipeline] runs the whole chain for the CLI and the HTTP server, with
// [cache] keeping rendered artifacts between runs.
//
// # Supporting Packages
//
//   - [errors]: coded errors (INPUT, SCHEMA, INTEGRITY, ...) with row context
//   - [observability]: hooks for metrics, wired to Prometheus by the server
//   - [buildinfo]: version information injected at build time
//
// # Quick Start
//
//	records, _ := table.ReadFile("data/input/table.csv", ',')
//	topo, _ := topology.Build(records)
//	_ = io.WriteYAML(topo, "lab", os.Stdout)
//	png, _ := nodelink.RenderPNG(ctx, nodelink.ToDOT(topo, nodelink.Options{}), "neato")
//
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/netdiag/pkg/buildinfo
// [cache]: https://pkg.go.dev/github.com/matzehuels/netdiag/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/netdiag/pkg/errors
// [io]: https://pkg.go.dev/github.com/matzehuels/netdiag/pkg/io
// [observability]: https://pkg.go.dev/github.com/matzehuels/netdiag/pkg/observability
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/netdiag/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/matzehuels/netdiag/pkg/render
// [table]: https://pkg.go.dev/github.com/matzehuels/netdiag/pkg/table
// [topology]: https://pkg.go.dev/github.com/matzehuels/netdiag/pkg/topology
package pkg
