// Package io provides YAML and JSON import and export for network topologies.
//
// # Overview
//
// The topology document is the human-readable twin of the diagram: students
// read it next to the picture, and instructors diff it between lab versions.
// The same document shape is written as YAML ([WriteYAML]) or JSON
// ([WriteJSON]) and can be read back with [ReadYAML].
//
// # Document Format
//
//	meta:
//	  id: lab-02
//	  name: lab-02
//	networks:
//	  - name: A
//	    vlan: 10
//	    ip: 10.0.12.0
//	    mask: 255.255.255.0
//	    interfaces: [PC1.eth0, PC2.eth0]
//	links:
//	  - endpoints: [PC1, PC2]
//	    interfaces: [PC1.eth0, PC2.eth0]
//	    network: A
//	nodes:
//	  - role: host
//	    name: PC1
//	    interfaces:
//	      - name: eth0
//	        mode: access
//	        ip: 10.0.12.1
//	        network: A
//	        gateway: null
//
// # Network Fields
//
//   - vlan: integer when the table held digits, the raw text (e.g. "trunk")
//     otherwise; omitted when unset
//   - ip, mask: subnet address and mask; omitted when unset
//   - interfaces: members as "device.interface", in input row order
//
// # Node Interfaces
//
// Interface ip, network and gateway are always present and null when unset,
// so every node has the same shape.
//
// # Round Trip
//
// [ReadYAML] rebuilds a topology from a document. A network whose table
// carried both a numeric VLAN and a different raw marker comes back with the
// numeric id only, since the document shows one VLAN per network.
package io
