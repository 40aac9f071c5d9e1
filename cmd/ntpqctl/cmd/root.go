/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/go-ini/ini"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yiqifeiyang/ntpsec/ntp/mode6"
)

// RootCmd is a main entry point. It's exported so ntpqctl could be easily extended without touching core functionality.
var RootCmd = &cobra.Command{
	Use:   "ntpqctl",
	Short: "Query NTP servers over the mode 6 control protocol",
}

var verbose bool
var debugLevel int
var server string
var cfgFile string
var family string

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	RootCmd.PersistentFlags().IntVarP(&debugLevel, "debug", "d", 0, "debug level, >=3 dumps packets")
	RootCmd.PersistentFlags().StringVarP(&server, "server", "S", "localhost", "server to connect to")
	RootCmd.PersistentFlags().StringVarP(&family, "family", "f", "", "restrict address family: udp4 or udp6")
	RootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "INI file with connection defaults")
}

// ConfigureVerbosity configures log verbosity based on parsed flags. Needs to be called by any subcommand.
func ConfigureVerbosity() {
	log.SetLevel(log.InfoLevel)
	if verbose || debugLevel > 0 {
		log.SetLevel(log.DebugLevel)
	}
}

// OpenSession builds a Session from flags plus optional INI defaults and
// connects it to the chosen server.
func OpenSession() (*mode6.Session, error) {
	s := mode6.NewSession()
	s.Debug = debugLevel
	if cfgFile != "" {
		cfg, err := ini.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		section := cfg.Section("ntpqctl")
		if !RootCmd.PersistentFlags().Changed("server") && section.HasKey("server") {
			server = section.Key("server").String()
		}
		if section.HasKey("primary_timeout") {
			if d, err := time.ParseDuration(section.Key("primary_timeout").String()); err == nil {
				s.PrimaryTimeout = d
			}
		}
		if section.HasKey("secondary_timeout") {
			if d, err := time.ParseDuration(section.Key("secondary_timeout").String()); err == nil {
				s.SecondaryTimeout = d
			}
		}
		if section.HasKey("version") {
			if v, err := section.Key("version").Int(); err == nil {
				s.PktVersion = v
			}
		}
	}
	if err := s.OpenHost(server, family); err != nil {
		return nil, err
	}
	return s, nil
}

// Execute is the main entry point for CLI interface
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
