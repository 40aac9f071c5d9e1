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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yiqifeiyang/ntpsec/ntp/control"
)

var rawOpcode uint8
var rawAssocID uint16
var rawData string

func init() {
	RootCmd.AddCommand(rawCmd)
	rawCmd.Flags().Uint8VarP(&rawOpcode, "opcode", "o", control.OpReadVariables, "control operation code to send")
	rawCmd.Flags().Uint16VarP(&rawAssocID, "assoc", "a", 0, "association ID")
	rawCmd.Flags().StringVarP(&rawData, "data", "D", "", "request payload")
}

var rawCmd = &cobra.Command{
	Use:   "raw",
	Short: "Send one control request and hex-dump the reassembled response",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()

		s, err := OpenSession()
		if err != nil {
			log.Fatal(err)
		}
		defer s.Close()
		rcode, err := s.DoQuery(rawOpcode, rawAssocID, []byte(rawData), false)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("response status 0x%04x, %d octets, server code %d\n", s.RStatus, len(s.Response), rcode)
		control.DumpHexPrintable(os.Stdout, s.Response)
	},
}
