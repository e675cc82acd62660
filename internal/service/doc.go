// Package service runs the inventory pipeline for Ansible.
//
// InventoryService owns one Transport and performs exactly one remote call
// per run. The payload then flows through the vmadm codec, the grouper, the
// assembler and the JSON codec without further I/O. The rendered document is
// returned as bytes so the caller can write it only after every stage has
// succeeded.
package service
