// Package domain defines the core types for the SmartOS dynamic inventory.
//
// # Guest Records
//
// GuestRecord is one entry of the `vmadm lookup -j` payload. Its name is
// resolved once, at parse time: the hostname field wins and the alias is used
// only when no hostname is present. The record keeps the untouched payload
// object in Raw so it can be republished as a host variable.
//
// NIC carries the address and optional VLAN of a guest network interface.
//
// # Errors
//
// Every failure of the pipeline is one of four typed errors:
// TransportError, PayloadFormatError, IncompleteRecordError and
// ConsistencyError. All of them are fatal for the run.
//
// # Design Principles
//
// - No I/O and no external dependencies
// - Presence of optional fields is decided at parse time
package domain
