// Package key defines the key events consumed by the line editor.
//
//   - Key: a named key, KeyRune for characters, or a pseudo key
//   - Modifier: Shift, Ctrl, Alt and Meta as a bitmask
//   - Event: one key press with modifiers and timestamp
//
// # Key Names
//
// Macros and key bindings name keys the same way live input reports them:
// a key name optionally preceded by modifiers joined with "+", for example
// "Enter", "Ctrl+Enter", "Shift+Tab", "Ctrl+c" or "Alt+Left".
//
// # Pseudo Keys
//
// Host notifications that must interrupt an edit, such as a resize or a
// scroll request, travel through the key queue as pseudo keys. A playback
// wait step does too, so the reader opens its popup itself. They are
// never produced by Parse from a macro script.
package key
