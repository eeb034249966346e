// Package conftree implements the configuration trees exchanged between
// pipeline modules: arbitrarily nested mappings, sequences, and scalars.
//
// Trees cross the HCL evaluation boundary as cty values and live on the Go
// side as map[string]any / []any structures. The package provides the two
// operations modules rely on to share configuration safely — deep cloning
// and mapping-aware merging — plus the Protected wrapper that forbids bulk
// iteration over a configuration's top-level entries.
package conftree
