// Package menu implements transient popup lists over the screen.
//
// Complete drives completion of the term before an editor's cursor:
// the current choice is previewed in the line while the popup is open,
// Escape puts the original term back, and accepting appends a separator.
// Menu is the generic list used for other choices; it adds paging and an
// optional confirmation callback that can keep the menu open.
//
// Both are cyclic: moving past the last item selects the first.
package menu
