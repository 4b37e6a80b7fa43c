/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package site

import (
	"encoding/base64"
	"fmt"
	"regexp"
)

// dataURIPattern matches base64 data URIs: data:<mediatype>;base64,<payload>
var dataURIPattern = regexp.MustCompile(`^data:[^;]+;base64,(.*)$`)

// Attachment is a caller-supplied file carried as a data URI.
type Attachment struct {
	Name string
	URL  string
}

// DecodeDataURI extracts the raw bytes from a base64 data URI.
func DecodeDataURI(uri string) ([]byte, error) {
	m := dataURIPattern.FindStringSubmatch(uri)
	if m == nil {
		return nil, fmt.Errorf("invalid data URI")
	}
	data, err := base64.StdEncoding.DecodeString(m[1])
	if err != nil {
		return nil, fmt.Errorf("decoding data URI payload: %w", err)
	}
	return data, nil
}

// Files builds the full publication set: the fixed artifacts followed by
// decoded attachments in caller order. Attachments that are not well-formed
// data URIs are dropped; each drop is reported as a warning so the handler
// can surface it without failing the request.
func Files(owner string, year int, attachments []Attachment) ([]File, []string) {
	files := FixedFiles(owner, year)

	var warnings []string
	for _, att := range attachments {
		data, err := DecodeDataURI(att.URL)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("attachment %q dropped: %v", att.Name, err))
			continue
		}
		files = append(files, File{Path: att.Name, Content: data})
	}
	return files, warnings
}
