// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package lexical

// symbols lists every recognised symbol lexeme, longest first, so that
// matching by simple linear scan implements maximal munch without a trie.
// Covers arithmetic, comparison, logical, bitwise, assignment (including
// compound), range, path, arrow, fat arrow, delimiters, punctuation, and the
// attribute prefixes.
var symbols = []string{
	// 3-byte
	"..=", "<<=", ">>=", "#![",
	// 2-byte
	"..", "::", "->", "=>", "#[",
	"&&", "||", "^^",
	"==", "!=", "<=", ">=",
	"<<", ">>",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	// 1-byte
	"(", ")", "{", "}", "[", "]",
	",", ";", ":", "=",
	"+", "-", "*", "/", "%",
	"<", ">", "!", "~", "&", "|", "^", ".",
}
