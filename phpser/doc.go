// Package phpser encodes values in the format of PHP's serialize().
//
// The output is byte-compatible with PHP: a value graph built from this
// package's types serializes to exactly the string PHP would produce for the
// equivalent PHP value.
//
// # Format
//
//	null      N;
//	bool      b:1;  b:0;
//	int       i:-5;
//	float     d:1.1;  d:1.0E+25;  d:INF;  d:-INF;  d:NAN;
//	string    s:3:"foo";          (length in bytes)
//	array     a:2:{i:0;s:1:"a";s:1:"k";N;}
//	object    O:8:"stdClass":1:{s:1:"a";i:1;}
//	custom    C:3:"Foo":3:{bar}
//	backref   R:3;  (array entry sharing a storage cell)
//	objref    r:1;  (object field pointing at an object already written)
//	resource  i:0;
//
// # Data Model
//
// Scalars: null, bool, int, float, string (raw bytes).
// Containers: Array (ordered, int or string keys), objects (any Record).
// Opaque: Resource handles serialize as i:0; callables are rejected.
//
// Array entries live in storage cells. Binding two keys to the same *Cell
// (Array.SetRef) makes them PHP references to each other, and the later
// entry serializes as R:<slot>. Equal values in separate cells are written
// out in full.
//
// # Objects
//
// A Record reports its class name and property descriptors. Property names
// are mangled by visibility:
//
//	public     name
//	protected  \0*\0name
//	private    \0Declaring\0name
//
// Private properties of ancestor classes are serialized under the ancestor's
// name. Records may implement CustomSerializer (Serializable),
// FieldOverrider (__serialize) or FieldSelector (__sleep).
//
// # Errors
//
// Callables and anonymous classes abort the call with a
// *DisallowedTypeError. A FieldSelector that returns something unusable is
// reported as a *HookNotice and the record serializes as N;.
//
// # Building Values
//
// Besides the constructors, FromGo converts ordinary Go values (struct tags
// select names and visibility), and FromJSON / FromYAML decode documents with
// their key order intact, the way json_decode would. DigestOf hashes the
// serialized form for use as a cache key.
package phpser
