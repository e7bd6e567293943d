// config_keys.go provides key-value access to configuration settings.
//
// The CLI and MCP config tools address settings by dotted key
// (e.g. "search.full_text"). Optional fields are pointers so "not set" can be
// told apart from an explicit zero or false, and defaults only apply to the
// former.

package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ValidKeys returns all valid configuration keys.
func ValidKeys() []string {
	return []string{
		"user.id", "user.name",
		"search.full_text", "search.format", "search.keep_empty_tokens",
		"access.open",
		"limits.max_query",
	}
}

// IsValidKey returns true if the key is a valid configuration key.
func IsValidKey(key string) bool {
	return slices.Contains(ValidKeys(), key)
}

// Get returns the value of a configuration key as a string.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "user.id":
		return strconv.FormatInt(c.UserID(), 10), nil
	case "user.name":
		return c.User.Name, nil
	case "search.full_text":
		return strconv.FormatBool(c.FullText()), nil
	case "search.format":
		return c.Format(), nil
	case "search.keep_empty_tokens":
		return strconv.FormatBool(c.KeepEmptyTokens()), nil
	case "access.open":
		return strconv.FormatBool(c.OpenAccess()), nil
	case "limits.max_query":
		return strconv.Itoa(c.MaxQuery()), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Set sets the value of a configuration key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "user.id":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: user.id must be a non-negative integer", ErrInvalidValue)
		}
		c.User.ID = &n
	case "user.name":
		c.User.Name = value
	case "search.full_text":
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		c.Search.FullText = &b
	case "search.format":
		if !slices.Contains(Formats(), value) {
			return fmt.Errorf("%w: search.format must be one of %s", ErrInvalidValue, strings.Join(Formats(), ", "))
		}
		c.Search.Format = value
	case "search.keep_empty_tokens":
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		c.Search.KeepEmptyTokens = &b
	case "access.open":
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		c.Access.Open = &b
	case "limits.max_query":
		n, err := strconv.Atoi(value)
		if err != nil || n < MinMaxQuery || n > MaxMaxQuery {
			return fmt.Errorf("%w: limits.max_query must be between %d and %d", ErrInvalidValue, MinMaxQuery, MaxMaxQuery)
		}
		c.Limits.MaxQuery = &n
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

func parseBool(key, value string) (bool, error) {
	v := strings.ToLower(value)
	if v != "true" && v != "false" {
		return false, fmt.Errorf("%w: %s must be true or false", ErrInvalidValue, key)
	}
	return v == "true", nil
}

// All returns all configuration values as a map.
func (c *Config) All() map[string]string {
	all := make(map[string]string, len(ValidKeys()))
	for _, k := range ValidKeys() {
		v, _ := c.Get(k)
		all[k] = v
	}
	return all
}

// IsSet returns true if the key has an explicit value (not just defaults).
func (c *Config) IsSet(key string) bool {
	switch key {
	case "user.id":
		return c.User.ID != nil
	case "user.name":
		return c.User.Name != ""
	case "search.full_text":
		return c.Search.FullText != nil
	case "search.format":
		return c.Search.Format != ""
	case "search.keep_empty_tokens":
		return c.Search.KeepEmptyTokens != nil
	case "access.open":
		return c.Access.Open != nil
	case "limits.max_query":
		return c.Limits.MaxQuery != nil
	default:
		return false
	}
}
