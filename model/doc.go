// Package model defines the JSON boundary types printed by conceptctl.
//
// These structs are the only types intended for direct JSON serialization;
// field names are stable.
package model
