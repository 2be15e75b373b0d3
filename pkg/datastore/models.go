package datastore

import "encoding/json"

// Response is the CKAN action envelope returned by datastore_search.
type Response struct {
	Help    string       `json:"help"`
	Success bool         `json:"success"`
	Result  *Result      `json:"result"`
	Error   *ActionError `json:"error"`
}

// ActionError is the error object CKAN returns alongside success=false.
type ActionError struct {
	Type    string `json:"__type"`
	Message string `json:"message"`
}

// Result holds one page of rows. Records are kept raw so that callers decide how to read
// each column.
type Result struct {
	ResourceID string            `json:"resource_id"`
	Fields     []Field           `json:"fields"`
	Records    []json.RawMessage `json:"records"`
	Total      int               `json:"total"`
	Limit      int               `json:"limit"`
}

// Field describes one column of the datastore table.
type Field struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// SearchResult is a validated page of rows.
type SearchResult struct {
	ResourceID string
	Total      int
	Fields     []Field
	Records    []json.RawMessage
}
