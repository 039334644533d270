// Package model provides the entity types for dropscope.
//
// This package contains type definitions and small helpers only. All other
// internal packages import model; model imports nothing internal.
//
// Key design constraints:
//   - Status is a closed enum: upcoming, live, ended
//   - Risk levels are integers in [0,100]; scores are never stored
//   - All JSON tags use snake_case and match the persisted column names
//   - Optional text columns are *string so NULL survives a round trip
package model
