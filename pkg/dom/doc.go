// Package dom provides lazily materialized element and text nodes.
//
// A node starts life as a virtual description: a tag, attributes, event
// registrations and children held in memory. It can be serialized to markup
// in that state without touching any rendering surface. The first operation
// that needs a real surface object promotes the node (and, recursively, its
// children) to a live object created through the tree's Surface. Promotion
// happens once and is never undone.
//
// # Handles
//
// Element and Text are small handles. Copying a handle shares the underlying
// node, so every copy observes the same state. IsSame compares identity, not
// content.
//
// # Dispatch
//
// Every operation looks at all of its operands first. If all of them are
// still virtual the operation edits the descriptions. If any of them is live,
// all of them are promoted and the operation goes to the Surface. A parent is
// therefore never left virtual while one of its children is live.
//
// # Hydration
//
// Hydrate takes over surface objects that already exist, typically parsed
// from markup produced by serializing an equivalent tree, instead of creating
// new ones.
//
// # Child groups
//
// ChildGroups tracks logical child slots of one parent so that dynamic
// regions can be filled, replaced and emptied by index while the live
// children stay in logical order.
package dom
