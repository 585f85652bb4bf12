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

import "strconv"

// keywords is the fixed table consulted before a word is classified as a
// plain identifier. `true`/`false` are deliberately absent: they lex to
// BooleanLiteral rather than Keyword.
var keywords = map[string]bool{
	"let": true, "mut": true, "const": true, "static": true,
	"type": true, "struct": true, "enum": true, "impl": true,
	"contract": true, "pub": true, "fn": true, "mod": true,
	"use": true, "as": true, "if": true, "else": true,
	"match": true, "for": true, "in": true, "while": true,
	"self": true, "Self": true, "bool": true, "field": true,
}

// IsKeyword reports whether word matches the fixed keyword table, including
// the parametrised primitive integer-type keywords `uNN`/`iNN`.
func IsKeyword(word string) bool {
	if keywords[word] {
		return true
	}

	return isIntegerTypeKeyword(word)
}

// isIntegerTypeKeyword reports whether word is of the form `u`|`i` followed
// by one of the legal bit-widths 8,16,…,248 (multiples of 8 up to 248).
func isIntegerTypeKeyword(word string) bool {
	if len(word) < 2 {
		return false
	}

	switch word[0] {
	case 'u', 'i':
	default:
		return false
	}

	n, err := strconv.Atoi(word[1:])
	if err != nil || n <= 0 || n > 248 || n%8 != 0 {
		return false
	}

	return true
}
