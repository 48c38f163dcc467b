package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CountResponse is the response for the count command.
type CountResponse struct {
	Count    int      `json:"count"`
	Excluded []string `json:"excluded_types"`
}

// ConfigResponse is the response for the config command.
type ConfigResponse struct {
	ZoteroDir        string            `json:"zotero_dir"`
	PapisDir         string            `json:"papis_dir"`
	InfoName         string            `json:"info_name"`
	Workers          int               `json:"workers"`
	GlobalConfig     string            `json:"global_config"`
	TranslatedFields map[string]string `json:"translated_fields"`
	TranslatedTypes  map[string]string `json:"translated_types"`
	ExcludedTypes    []string          `json:"excluded_types"`
	ContentTypes     map[string]string `json:"content_types"`
}
