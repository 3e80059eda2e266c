/*

Process of compilation

YAML Program Tree ->
	decode ->
Abstract Syntax Tree (ast) ->
	check ->
Class Layout and Dispatch Tables (sym) ->
	lir ->
LIR Text

The checker stops at the first semantic error.
The translator walks the tree again and trusts the checker;
if they disagree it panics with diag.InternalError.

*/
package compiler
