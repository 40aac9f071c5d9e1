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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yiqifeiyang/ntpsec/ntp/control"
)

func init() {
	RootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the server's decoded system status word",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()

		s, err := OpenSession()
		if err != nil {
			log.Fatal(err)
		}
		defer s.Close()
		// the status word echoed on a read status response is the
		// system status word
		peers, err := s.ReadStat(0)
		if err != nil {
			log.Fatal(err)
		}
		ssw := control.ReadSystemStatusWord(s.RStatus)
		clockSource := "unknown"
		if int(ssw.ClockSource) < len(control.ClockSourceDesc) {
			clockSource = control.ClockSourceDesc[ssw.ClockSource]
		}
		fmt.Printf("status word:  0x%04x\n", s.RStatus)
		fmt.Printf("leap:         %s\n", control.LeapDesc[ssw.LI])
		fmt.Printf("clock source: %s\n", clockSource)
		fmt.Printf("event:        %s\n", control.SystemEventDesc[ssw.SystemEventCode])
		fmt.Printf("event count:  %d\n", ssw.SystemEventCounter)
		fmt.Printf("associations: %d\n", len(peers))
	},
}
