/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements. See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package validation

import (
	"regexp"
	"strings"
)

// MaxIdentifierLength is the longest column name accepted in strict mode,
// the PostgreSQL identifier limit.
const MaxIdentifierLength = 63

var strictIdentifier = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_\-]*$`)

// ValidIdentifier reports whether id can be embedded as a quoted SQL
// identifier. Identifiers containing '.' or '"' are always rejected, in
// strict mode only the characters [A-Za-z0-9_-] are allowed.
func ValidIdentifier(
	id string, strict bool,
) bool {

	if id == "" || strings.ContainsAny(id, `."`) {
		return false
	}
	return !strict || strictIdentifier.MatchString(id)
}

func validColumnName(
	column string, strict bool,
) bool {

	if !ValidIdentifier(column, strict) {
		return false
	}
	return !strict || len(column) <= MaxIdentifierLength
}
