// Package codegen turns a metamodel into a Python module of Gaphor class
// definitions.
//
// A run has three stages:
//
//	BuildGraph    classify classes as known (imported) or generated and
//	              record each generated class's ordered supertypes
//	checkAcyclic  reject generalization cycles before anything is written
//	emit          write every generated class after all of its supertypes
//
// Output is deterministic: the same model always produces the same bytes.
//
// Operations are written as "name: operation". The operation annotation is
// an unresolved placeholder and is not imported, so a module containing
// operations raises NameError on import until the placeholders are
// replaced.
//
// References to private classes never reach the output. An attribute typed
// by one renders as None and an association end pointing at one is left
// out. A class imported under the ambiguity policy "import" uses the
// catalog's spelling, both in the import line and wherever it is named.
package codegen
