// Package planner turns normalized sort and pagination specifications into
// bounded, deterministic SQL query plans. It owns the query-builder handle
// for the duration of one field resolution and never executes anything.
package planner
