// Package config loads this server's settings from an ini file (via
// go-ini) with command-line flags (via pflag) layered on top, the same
// two-stage precedence the teacher's config package uses.
package config

import (
	"os"

	"github.com/go-ini/ini"
	"github.com/spf13/pflag"
)

// AppConfig is every setting the server needs to start listening and
// serve one HTTP-manifest-backed share.
type AppConfig struct {
	Debug      bool
	Console    bool
	ListenAddr string
	Hostname   string
	Advertise  bool
	StatsAddr  string

	ShareName    string
	ManifestPath string

	AllowGuest bool
	Username   string
	Password   string
}

// NewConfig builds an AppConfig from the first ini file in iniFile that
// parses, then applies command-line flag overrides.
func NewConfig(iniFile []string) AppConfig {
	cfg := AppConfig{
		ListenAddr:   "0.0.0.0:445",
		Debug:        false,
		Console:      true,
		Advertise:    true,
		Hostname:     "smb1srv",
		ShareName:    "SHARE",
		ManifestPath: "manifest.json",
		AllowGuest:   false,
	}

	var f *ini.File
	var err error
	for _, file := range iniFile {
		if f, err = ini.Load(file); err == nil {
			break
		}
	}

	if err == nil {
		if s, err := f.GetSection("Default"); err == nil {
			if v := s.Key("debug"); v != nil {
				if b, err := v.Bool(); err == nil {
					cfg.Debug = b
				}
			}
			if v := s.Key("console"); v != nil {
				if b, err := v.Bool(); err == nil {
					cfg.Console = b
				}
			}
			if v := s.Key("listen_addr"); v.String() != "" {
				cfg.ListenAddr = v.String()
			}
			if v := s.Key("hostname"); v.String() != "" {
				cfg.Hostname = v.String()
			}
			if v := s.Key("share_name"); v.String() != "" {
				cfg.ShareName = v.String()
			}
			if v := s.Key("manifest_path"); v.String() != "" {
				cfg.ManifestPath = v.String()
			}
			if v := s.Key("username"); v.String() != "" {
				cfg.Username = v.String()
			}
			if v := s.Key("password"); v.String() != "" {
				cfg.Password = v.String()
			}
			if v := s.Key("allow_guest"); v != nil {
				if b, err := v.Bool(); err == nil {
					cfg.AllowGuest = b
				}
			}
			if v := s.Key("advertise"); v != nil {
				if b, err := v.Bool(); err == nil {
					cfg.Advertise = b
				}
			}
		}
	}

	pflag.BoolVarP(&cfg.Debug, "debug", "d", cfg.Debug, "debug mode")
	pflag.BoolVarP(&cfg.Console, "console", "c", cfg.Console, "output logs to console")
	pflag.StringVarP(&cfg.ListenAddr, "listen_addr", "l", cfg.ListenAddr, "smb server listen address")
	pflag.StringVarP(&cfg.Hostname, "hostname", "h", cfg.Hostname, "hostname to advertise")
	pflag.BoolVarP(&cfg.Advertise, "advertise", "a", cfg.Advertise, "advertise the server over mDNS")
	pflag.StringVarP(&cfg.ShareName, "share", "s", cfg.ShareName, "share name")
	pflag.StringVarP(&cfg.ManifestPath, "manifest", "m", cfg.ManifestPath, "path to the share's manifest.json")
	pflag.StringVarP(&cfg.Username, "user", "u", cfg.Username, "account username")
	pflag.StringVar(&cfg.Password, "password", cfg.Password, "account password")
	pflag.StringVar(&cfg.StatsAddr, "stats_addr", cfg.StatsAddr, "address to serve JSON stats on, empty to disable")
	pflag.BoolVarP(&cfg.AllowGuest, "guest", "g", cfg.AllowGuest, "allow guest access when no credentials are set")
	pflag.Parse()

	return cfg
}

// HomeDir returns the user's home directory, or "" if it can't be
// determined; used to locate the default ini file location.
func HomeDir() string {
	dir, _ := os.UserHomeDir()
	return dir
}
