// Package d2 renders network topologies with the D2 diagram language.
//
// # Layout
//
// Each network becomes a container titled "VLAN <id>" when its VLAN is
// numeric, or its name otherwise. Hosts sit inside the container of their
// first attached network; routers and switches stay at the top level. Devices
// carry markdown labels with their interface addresses.
//
// Devices sharing a network are joined by an edge unless both already sit in
// that network's container. Edge arrowheads are labelled with the interface
// names at each end.
//
// # Rendering
//
// [ToD2] only produces source. [Render] validates the source and renders it
// to PNG, SVG or PDF with the external d2 binary
// (https://d2lang.com/tour/install). A missing binary is reported as an
// [errors.ErrCodeToolNotFound] error.
package d2
