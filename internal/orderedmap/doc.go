// Package orderedmap provides an insertion-ordered map with an optional
// default factory.
//
// # Two-Phase Protocol
//
// A Map is used in two phases:
//
//   - **Insertion:** while a factory is installed, Get on an absent key builds
//     a fresh value, appends the key to the iteration order and returns it.
//   - **Sealed:** after Seal, the factory is disabled and Get on an absent key
//     returns ErrKeyNotFound instead of silently inserting a value.
//
// Iteration always follows the order in which keys were first inserted.
// Overwriting an existing key with Set keeps its original position.
//
// # Concurrency
//
// A Map is not safe for concurrent mutation. The regrouper fills it from a
// single goroutine and hands ownership to the caller once sealed.
package orderedmap
