// Package config loads the optional repository configuration file holding
// the ignore-policy rules.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/xeipuuv/gojsonschema"

	"github.com/assetbump/assetbump/pkg/ignore"
)

// DefaultFileName is the configuration file looked up under the repository
// root when no explicit path is configured.
const DefaultFileName = ".update-static-assets.json"

// configSchema validates the configuration file before decoding.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "ignore": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "cdn": { "type": "string" },
          "name": { "type": "string" },
          "version": { "type": "string" }
        },
        "required": ["cdn", "name", "version"],
        "additionalProperties": false
      }
    }
  }
}`

// File is the decoded configuration file.
type File struct {
	Ignore ignore.Rules `mapstructure:"ignore"`
}

// Load reads the configuration file at path. A missing file is not an
// error and yields an empty rule set; an invalid file is a configuration
// error.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is the user-configured config file
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(configSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to validate configuration file %s: %w", path, err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, fmt.Errorf("configuration file %s is invalid: %s", path, strings.Join(problems, "; "))
	}

	v := viper.New()
	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %s: %w", path, err)
	}

	var file File
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("failed to decode configuration file %s: %w", path, err)
	}

	if err := file.Ignore.Validate(); err != nil {
		return nil, fmt.Errorf("configuration file %s: %w", path, err)
	}

	return &file, nil
}
