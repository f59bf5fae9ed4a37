// Package markdown joins lines of markdown split between two CJK characters.
//
// A document is parsed with goldmark, flattened into an Event sequence, and
// every soft break whose nearest visible neighbours are CJK on both sides is
// dropped. The remaining events are written back as markdown. Documents with
// nothing to join are returned byte for byte.
package markdown
