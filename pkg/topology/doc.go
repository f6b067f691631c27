// Package topology turns canonical table records into a network topology.
//
// The conversion runs in four ordered stages:
//
//  1. [ResolveDevices] creates one [Device] per distinct device name. The
//     first row that names a device fixes its role.
//  2. [AttachInterfaces] attaches an [Interface] to its device for every row
//     naming an interface. A later row for the same interface replaces the
//     earlier one.
//  3. [AggregateNetworks] folds the rows referencing a network into one
//     [Network]. VLAN, subnet IP and mask keep the first non-empty value seen.
//  4. [Assemble] composes devices and networks into a [Topology].
//
// [Build] runs all four stages on raw table records.
//
// Interfaces refer to their device and network by name, never by pointer, so
// the model is acyclic and serializes directly. Every collection keeps input
// row order, which decides both merge policies above.
package topology
