// Command smb1srv serves one read-only share, indexed by a JSON
// manifest of ranged-HTTP-fetchable files, over SMB1/CIFS.
package main

import (
	"os"
	"os/signal"

	"github.com/macos-fuse-t/go-smb1/bonjour"
	"github.com/macos-fuse-t/go-smb1/config"
	"github.com/macos-fuse-t/go-smb1/httpshare"
	"github.com/macos-fuse-t/go-smb1/server"
	"github.com/macos-fuse-t/go-smb1/stats"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	homeDir := config.HomeDir()
	cfg := config.NewConfig([]string{
		"smb1srv.ini",
		homeDir + "/.smb1srv/smb1srv.ini",
	})

	initLogs(cfg)

	manifest, err := httpshare.LoadManifest(cfg.ManifestPath)
	if err != nil {
		log.Fatalf("loading manifest %s: %v", cfg.ManifestPath, err)
	}

	srv := server.New(cfg.Hostname)
	srv.AddShare(cfg.ShareName, httpshare.New(cfg.ShareName, manifest))
	if cfg.Username != "" {
		srv.AddAccount(cfg.Username, cfg.Password)
	}
	srv.NTLMServer().AllowGuest = cfg.AllowGuest

	log.Infof("starting smb1srv on %s, sharing %q from %s", cfg.ListenAddr, cfg.ShareName, cfg.ManifestPath)
	go func() {
		if err := srv.Serve(cfg.ListenAddr); err != nil {
			log.Fatalf("serve failed: %v", err)
		}
	}()

	if cfg.StatsAddr != "" {
		go func() {
			if err := stats.StatServer(cfg.StatsAddr); err != nil {
				log.Warnf("stats server failed: %v", err)
			}
		}()
	}

	if cfg.Advertise {
		go func() {
			if err := bonjour.Advertise(cfg.ListenAddr, cfg.Hostname, cfg.ShareName); err != nil {
				log.Warnf("mDNS advertise failed: %v", err)
			}
		}()
	}

	waitSignal()
}

func initLogs(cfg config.AppConfig) {
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}

	if cfg.Console {
		log.SetOutput(os.Stdout)
		return
	}
	log.SetOutput(&lumberjack.Logger{
		Filename:   config.HomeDir() + "/smb1srv.log",
		MaxSize:    100, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	})
}

func waitSignal() {
	handler := make(chan os.Signal, 1)
	signal.Notify(handler, os.Interrupt)
	for sig := range handler {
		if sig == os.Interrupt {
			bonjour.Shutdown()
			os.Exit(0)
		}
	}
}
