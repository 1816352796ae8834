// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package warehouse

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotReadOnly is returned when a statement does not begin with SELECT.
// The statement is rejected before any warehouse call is made.
var ErrNotReadOnly = errors.New("only SELECT queries are permitted")

// ValidateReadOnly checks that the statement lexically begins with the
// read-only verb. This is a trust boundary for an LLM-authored statement,
// not a full SQL parse; the warehouse account should also be read-only.
func ValidateReadOnly(sql string) error {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return fmt.Errorf("empty statement: %w", ErrNotReadOnly)
	}
	if !strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") {
		return ErrNotReadOnly
	}
	return nil
}

// EnsureRowCap appends a LIMIT clause when the statement has none, protecting
// downstream memory from unbounded result sets. Trailing whitespace and
// statement terminators are stripped first so the appended clause stays
// syntactically valid.
func EnsureRowCap(sql string, cap int) string {
	trimmed := strings.TrimSpace(sql)
	if strings.Contains(strings.ToUpper(trimmed), "LIMIT") {
		return trimmed
	}
	trimmed = strings.TrimRight(trimmed, "; \t\n\r")
	return fmt.Sprintf("%s LIMIT %d", trimmed, cap)
}
