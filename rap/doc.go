// Package rap decodes rapified configs, the compiled binary form of the
// class-hierarchy config language, and queries the decoded hierarchy.
//
// # Format
//
// A rapified buffer starts with the signature "\x00raP", eight reserved bytes
// and the little-endian offset of the enum table. The root class body follows
// inline:
//
//	Body    → AsciiZ(inherits) CompressedUint(count) Entry{count}
//	Entry   → 0 AsciiZ(name) U32(body offset)            class
//	        | 1 U8(sign) AsciiZ(name) Value(sign)         scalar
//	        | 2 AsciiZ(name) Array                        array
//	        | 3 AsciiZ(name)                              forward declaration
//	        | 4 AsciiZ(name)                              delete
//	        | 5 I32(flag) AsciiZ(name) Array              array extension
//	Array   → CompressedUint(count) (U8(sign) Value(sign)){count}
//	Value   → AsciiZ | F32 | I32 | Array | AsciiZ(expression)
//	Enums   → U32(count) (AsciiZ(name) U32(value)){count}
//
// Class bodies live out of line; the decoder seeks to them and returns to the
// referencing entry afterwards. Nothing may follow the enum table.
//
// # Queries
//
// Names are compared without regard to case. [Body.Find] returns the first
// direct entry with a given name, [Body.ResolveProperty] follows a class's
// parent chain, and [Tree.CompileSkeleton] builds the bone list of a model
// skeleton.
//
// [Walker] iterates over every entry of a tree. [DeclaredClasses],
// [ClassReferences] and [PathReferences] build on it to collect the values
// that an addon validator cross-checks.
package rap
