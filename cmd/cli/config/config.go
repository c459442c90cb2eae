package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

const (
	defaultAPIURL = "http://localhost:8080"
	tokenFileName = ".dtl_token"
)

// Profile holds CLI defaults read from ~/.dtl/config.toml:
//
//	api_url        = "https://labs.example.com"
//	resource_group = "rg1"
//	lab            = "lab1"
type Profile struct {
	APIURL        string `toml:"api_url"`
	ResourceGroup string `toml:"resource_group"`
	Lab           string `toml:"lab"`
}

// Path returns the profile location. It can be overridden with DTL_CONFIG.
func Path() string {
	if v := os.Getenv("DTL_CONFIG"); v != "" {
		return v
	}
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, ".dtl", "config.toml")
}

// LoadProfile reads the profile at path. A missing file yields an empty profile.
func LoadProfile(path string) (Profile, error) {
	var p Profile
	md, err := toml.DecodeFile(path, &p)
	if errors.Is(err, fs.ErrNotExist) {
		return Profile{}, nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Profile{}, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return p, nil
}

// APIURL returns the base URL for the management API.
// Precedence: flag, DTL_API_URL, profile, default.
func APIURL(flag string, p Profile) string {
	switch {
	case flag != "":
		return flag
	case os.Getenv("DTL_API_URL") != "":
		return os.Getenv("DTL_API_URL")
	case p.APIURL != "":
		return p.APIURL
	}
	return defaultAPIURL
}

// Settings are the resolved connection settings for a command invocation.
type Settings struct {
	APIURL  string
	Token   string
	Profile Profile
	Verbose bool
}

// FromCommand resolves Settings from the root persistent flags, the environment
// and the profile. Flags that are not registered on cmd are treated as unset.
func FromCommand(cmd *cobra.Command) (Settings, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = Path()
	}
	profile, err := LoadProfile(path)
	if err != nil {
		return Settings{}, err
	}
	apiFlag, _ := cmd.Flags().GetString("api-url")
	verbose, _ := cmd.Flags().GetBool("verbose")

	token, _ := LoadToken()
	return Settings{
		APIURL:  APIURL(apiFlag, profile),
		Token:   token,
		Profile: profile,
		Verbose: verbose,
	}, nil
}

// ==========================
// Token Storage Helpers
// ==========================

// TokenPath returns where the JWT is stored. It can be overridden with DTL_TOKEN_FILE.
func TokenPath() string {
	if v := os.Getenv("DTL_TOKEN_FILE"); v != "" {
		return v
	}
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, tokenFileName)
}

// SaveToken writes the JWT with owner-only permissions.
func SaveToken(token string) error {
	return os.WriteFile(TokenPath(), []byte(token), 0600)
}

// LoadToken returns the stored JWT. DTL_TOKEN takes precedence over the file.
func LoadToken() (string, error) {
	if v := os.Getenv("DTL_TOKEN"); v != "" {
		return v, nil
	}
	data, err := os.ReadFile(TokenPath())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// RemoveToken deletes the stored JWT. removed is false when there was none.
func RemoveToken() (removed bool, err error) {
	err = os.Remove(TokenPath())
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}
