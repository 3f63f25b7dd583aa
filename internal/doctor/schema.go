package doctor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	schemaCheckName = "Schema"
	schemaURL       = "https://tasktrack.dev/schema/tasks.json"
)

// tasksSchema describes a well-formed tasks file.
const tasksSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["description", "status"],
    "properties": {
      "description": {"type": "string"},
      "status": {"enum": ["todo", "in-progress", "done"]}
    }
  }
}`

// SchemaCheck validates every task record against the tasks schema. Missing
// fields are errors that `clean` repairs; unrecognized status values and
// non-string descriptions are warnings.
type SchemaCheck struct {
	Path string
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource(schemaURL, strings.NewReader(tasksSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaURL)
}

// Run executes the schema check.
func (c *SchemaCheck) Run(_ context.Context) []CheckResult {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []CheckResult{{Name: schemaCheckName, Passed: true}}
		}
		return []CheckResult{{
			Name:     schemaCheckName,
			Passed:   false,
			Severity: SeverityError,
			Details:  fmt.Sprintf("tasks file unreadable: %v", err),
		}}
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []CheckResult{{Name: schemaCheckName, Passed: true}}
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return []CheckResult{{
			Name:     schemaCheckName,
			Passed:   false,
			Severity: SeverityWarning,
			Details:  "skipped: tasks file is not valid JSON",
		}}
	}
	if doc == nil {
		return []CheckResult{{Name: schemaCheckName, Passed: true}}
	}

	schema, err := compileSchema()
	if err != nil {
		return []CheckResult{{
			Name:     schemaCheckName,
			Passed:   false,
			Severity: SeverityError,
			Details:  fmt.Sprintf("could not compile schema: %v", err),
		}}
	}

	err = schema.Validate(doc)
	if err == nil {
		return []CheckResult{{Name: schemaCheckName, Passed: true}}
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []CheckResult{{
			Name:     schemaCheckName,
			Passed:   false,
			Severity: SeverityError,
			Details:  err.Error(),
		}}
	}

	var leaves []*jsonschema.ValidationError
	collectLeaves(ve, &leaves)
	sort.SliceStable(leaves, func(i, j int) bool {
		return leaves[i].InstanceLocation < leaves[j].InstanceLocation
	})

	results := make([]CheckResult, 0, len(leaves))
	for _, leaf := range leaves {
		results = append(results, schemaResult(leaf))
	}
	return results
}

func collectLeaves(err *jsonschema.ValidationError, out *[]*jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		*out = append(*out, err)
		return
	}
	for _, cause := range err.Causes {
		collectLeaves(cause, out)
	}
}

func schemaResult(leaf *jsonschema.ValidationError) CheckResult {
	r := CheckResult{
		Name:     schemaCheckName,
		Passed:   false,
		Severity: SeverityWarning,
		Details:  fmt.Sprintf("%s: %s", describeLocation(leaf.InstanceLocation), leaf.Message),
	}
	switch {
	case strings.HasSuffix(leaf.KeywordLocation, "/required"):
		r.Severity = SeverityError
		r.Suggestion = "Run `tasktrack clean` to drop incomplete tasks"
	case strings.HasSuffix(leaf.KeywordLocation, "/status/enum"):
		r.Suggestion = "Use `tasktrack mark-in-progress` or `tasktrack mark-done` to set a valid status"
	case leaf.InstanceLocation == "", strings.HasSuffix(leaf.KeywordLocation, "/items/type"):
		r.Severity = SeverityError
		r.Suggestion = "Manual fix required"
	}
	return r
}

// describeLocation turns a JSON pointer like /1/status into "task 2 status".
func describeLocation(ptr string) string {
	parts := strings.Split(strings.TrimPrefix(ptr, "/"), "/")
	if ptr == "" || len(parts) == 0 {
		return "tasks file"
	}
	idx, err := strconv.Atoi(parts[0])
	if err != nil {
		return ptr
	}
	desc := fmt.Sprintf("task %d", idx+1)
	if len(parts) > 1 {
		desc += " " + strings.Join(parts[1:], "/")
	}
	return desc
}
