// Package config provides configuration loading and validation for Portico.
//
// Configuration is read from a YAML file, defaults are applied for any
// omitted fields, environment variables of the form PORTICO_SECTION_FIELD
// override file values, and the final result is validated before use.
package config
