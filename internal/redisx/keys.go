package redisx

// Inventory records live one hash per product:
//
//	{prefix}:{normalized product key} -> { stock: <available qty> }
//
// The prefix stands in for the inventory system's table identity and is
// configurable per environment.
const DefaultInventoryPrefix = "inventory"
