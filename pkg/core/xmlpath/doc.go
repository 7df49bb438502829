// Package xmlpath builds and evaluates namespace-aware path queries over
// harvested XML records.
//
// # Overview
//
// Field locations are configured as path templates such as
//
//	descriptiveMetadata[@xml:lang="{language}"]/objectIdentificationWrap/titleWrap/titleSet/appellationValue
//
// The source schema and its namespace prefix are only known at configuration
// time, so templates are written without prefixes. [ParseTemplate] turns the
// text into typed steps once; [Template.Build] then substitutes the language
// and qualifies every unprefixed element and attribute step with the
// configured prefix. Steps that already carry a prefix (including the
// reserved xml: prefix) are left alone.
//
// A built [Query] is anchored on the descendant axis, so it matches anywhere
// below the document root:
//
//	q := tpl.Build("lido", "nl")
//	q.String() // descendant::lido:descriptiveMetadata[@xml:lang="nl"]/lido:objectIdentificationWrap/...
//
// # Supported syntax
//
// A template is a "/"-separated list of steps. Each step is an element name,
// optionally prefixed, followed by zero or more predicates:
//
//	[@attr]          attribute exists
//	[@attr="value"]  attribute equals value
//	[child]          child element exists
//	[child="value"]  child element text equals value
//
// The last step may select an attribute (@attr) instead of an element.
// Values may be quoted with single or double quotes.
//
// # Evaluation
//
// [Parse] reads a document into a small tree with namespace URIs resolved.
// Prefixes in a query are resolved against the xmlns declarations found in
// the document; a prefix the document never declares matches elements that
// use it undeclared, which happens when a metadata payload is cut out of a
// larger envelope.
package xmlpath
