/*
Package jsonutils renders protocol payloads for terminal output in compact
JSON, pretty JSON, or tabular form.
*/
package jsonutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
)

// OutputFormat represents the available output format options.
type OutputFormat string

const (
	// FormatJSON represents compact JSON output.
	FormatJSON OutputFormat = "json"
	// FormatPretty represents pretty-printed JSON output.
	FormatPretty OutputFormat = "pretty"
	// FormatTable represents tabular output.
	FormatTable OutputFormat = "table"
)

// ParseFormat converts a string to an OutputFormat.
func ParseFormat(format string) OutputFormat {
	switch strings.ToLower(format) {
	case "json", "j":
		return FormatJSON
	case "pretty", "p":
		return FormatPretty
	case "table", "t":
		return FormatTable
	default:
		return FormatTable
	}
}

// Format renders data according to the specified output format. Typed
// values are normalized through their JSON form first, so table detection
// works on protocol structs and plain maps alike.
func Format(data any, format string) (string, error) {
	switch ParseFormat(format) {
	case FormatJSON:
		return formatJSON(data, false)
	case FormatPretty:
		return formatJSON(data, true)
	default:
		normalized, err := normalize(data)
		if err != nil {
			return "", err
		}
		return formatTable(normalized)
	}
}

// formatJSON converts data to JSON with optional pretty printing.
func formatJSON(data any, pretty bool) (string, error) {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return "", fmt.Errorf("error formatting JSON: %w", err)
	}

	return string(output), nil
}

// normalize round-trips data through JSON so every value becomes a plain
// map, slice, or scalar.
func normalize(data any) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error formatting JSON: %w", err)
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("error normalizing data: %w", err)
	}
	return out, nil
}

// formatTable formats data as a tabular view based on its structure,
// detecting the common response shapes.
func formatTable(data any) (string, error) {
	if data == nil {
		return "No data available", nil
	}

	mapVal, ok := data.(map[string]any)
	if !ok {
		return formatJSON(data, true)
	}

	// Handle tool listings
	if tools, ok := mapVal["tools"]; ok {
		return formatToolsList(tools)
	}

	// Handle tool call output
	if content, ok := mapVal["content"]; ok {
		return formatContent(content)
	}

	// Generic table for other map structures
	return formatGenericMap(mapVal)
}

// formatToolsList formats a list of tools as a table with name and
// description columns. Rows carrying an "identity" field (the offline
// catalog listing) get an extra application column.
func formatToolsList(tools any) (string, error) {
	toolsSlice, ok := tools.([]any)
	if !ok {
		return "", fmt.Errorf("tools is not a slice")
	}

	if len(toolsSlice) == 0 {
		return "No tools available", nil
	}

	withIdentity := false
	for _, t := range toolsSlice {
		if tool, ok := t.(map[string]any); ok {
			if _, ok := tool["identity"]; ok {
				withIdentity = true
				break
			}
		}
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	if withIdentity {
		fmt.Fprintln(w, "NAME\tAPPLICATION\tDESCRIPTION")
		fmt.Fprintln(w, "----\t-----------\t-----------")
	} else {
		fmt.Fprintln(w, "NAME\tDESCRIPTION")
		fmt.Fprintln(w, "----\t-----------")
	}

	for _, t := range toolsSlice {
		tool, ok := t.(map[string]any)
		if !ok {
			continue
		}

		name, _ := tool["name"].(string)
		desc, _ := tool["description"].(string)

		// Truncate long descriptions
		if len(desc) > 70 {
			desc = desc[:67] + "..."
		}

		if withIdentity {
			identity, _ := tool["identity"].(string)
			fmt.Fprintf(w, "%s\t%s\t%s\n", name, identity, desc)
		} else {
			fmt.Fprintf(w, "%s\t%s\n", name, desc)
		}
	}

	w.Flush()
	return buf.String(), nil
}

// formatContent flattens tool output blocks into readable text.
func formatContent(content any) (string, error) {
	contentSlice, ok := content.([]any)
	if !ok {
		return "", fmt.Errorf("content is not a slice")
	}

	var buf strings.Builder

	for _, c := range contentSlice {
		contentItem, ok := c.(map[string]any)
		if !ok {
			continue
		}

		contentType, _ := contentItem["type"].(string)

		switch contentType {
		case "text":
			text, _ := contentItem["text"].(string)
			buf.WriteString(text)
		default:
			buf.WriteString(fmt.Sprintf("[%s CONTENT]\n", strings.ToUpper(contentType)))
		}
	}

	return buf.String(), nil
}

// formatGenericMap formats a generic map as a table with key and value
// columns. Keys are sorted for consistent output.
func formatGenericMap(data map[string]any) (string, error) {
	if len(data) == 0 {
		return "No data available", nil
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "KEY\tVALUE")
	fmt.Fprintln(w, "---\t-----")

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := data[k]
		var valueStr string

		switch val := v.(type) {
		case string:
			valueStr = val
		case nil:
			valueStr = "<nil>"
		default:
			// For complex types, use JSON
			jsonBytes, err := json.Marshal(val)
			if err != nil {
				valueStr = fmt.Sprintf("<%T>", val)
			} else {
				valueStr = string(jsonBytes)
				// Truncate long values
				if len(valueStr) > 50 {
					valueStr = valueStr[:47] + "..."
				}
			}
		}

		fmt.Fprintf(w, "%s\t%s\n", k, valueStr)
	}

	w.Flush()
	return buf.String(), nil
}
