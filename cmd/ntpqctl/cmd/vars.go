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

var varsAssocID uint16

func init() {
	RootCmd.AddCommand(varsCmd)
	varsCmd.Flags().Uint16VarP(&varsAssocID, "assoc", "a", 0, "association ID, 0 means system variables")
}

var varsCmd = &cobra.Command{
	Use:   "vars [name ...]",
	Short: "Print system or peer variables, optionally only the named ones",
	Run: func(_ *cobra.Command, args []string) {
		ConfigureVerbosity()

		s, err := OpenSession()
		if err != nil {
			log.Fatal(err)
		}
		defer s.Close()
		vars, err := s.ReadVar(varsAssocID, args, control.OpReadVariables)
		if err != nil {
			log.Fatal(err)
		}
		for _, name := range vars.Keys() {
			v, _ := vars.Get(name)
			fmt.Printf("%s=%s\n", name, v.String())
		}
	},
}
